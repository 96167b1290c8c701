// Package viewport implements the Viewport Controller: scroll position,
// container measurement, the measured-size cache, and the render-loop
// orchestration that ties geometry, speed classification, the element
// pool, the renderer, and the collection coordinator together (spec
// §4.1/§4.2/§4.5).
package viewport

import (
	"context"
	"sync"
	"time"

	"github.com/newbpydev/vlistengine/pkg/collection"
	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/geometry"
	"github.com/newbpydev/vlistengine/pkg/orientation"
	"github.com/newbpydev/vlistengine/pkg/render"
	"github.com/newbpydev/vlistengine/pkg/speed"
)

// Config configures a Viewport at construction.
type Config struct {
	EstimatedItemSize int
	Overscan          int
	ContainerWidth    int
	ContainerHeight   int
	Thresholds        speed.Thresholds
}

// Viewport owns scroll position, the measured-size cache, and the
// rendered-elements map, and drives the collection's range loading.
type Viewport struct {
	mu sync.Mutex

	cfg    Config
	orient *orientation.Manager
	coll   *collection.Collection
	renderer *render.Renderer
	tracker  *speed.Tracker
	bus      *events.Bus

	scrollPosition int
	measured       map[int]int
	lastVisible    geometry.Range
	rendered       map[int]*render.RenderedElement
	lastScrollAt   time.Time
}

// New constructs a Viewport. renderer/coll may be wired after construction
// via SetRenderer/SetCollection if the composition root needs to break a
// cycle; both must be set before Render is called.
func New(cfg Config, orient *orientation.Manager, bus *events.Bus) *Viewport {
	if cfg.EstimatedItemSize <= 0 {
		cfg.EstimatedItemSize = 1
	}
	capacity := 1
	if cfg.EstimatedItemSize > 0 && cfg.ContainerHeight > 0 {
		capacity = cfg.ContainerHeight / cfg.EstimatedItemSize
		if capacity < 1 {
			capacity = 1
		}
	}
	return &Viewport{
		cfg:      cfg,
		orient:   orient,
		bus:      bus,
		measured: make(map[int]int),
		rendered: make(map[int]*render.RenderedElement),
		tracker:  speed.New(cfg.Thresholds, capacity),
	}
}

// SetCollection wires the collection coordinator this viewport drives.
func (v *Viewport) SetCollection(c *collection.Collection) { v.coll = c }

// SetRenderer wires the renderer this viewport drives.
func (v *Viewport) SetRenderer(r *render.Renderer) { v.renderer = r }

// containerSize returns the current main-axis size in cells (spec calls
// this the container's client size).
func (v *Viewport) containerSize() int {
	return v.orient.MainAxisSize(v.cfg.ContainerWidth, v.cfg.ContainerHeight)
}

// SetContainerSize updates container dimensions on a resize event (spec
// §4.1 "ResizeObserver callback"), emitting viewport:changed.
func (v *Viewport) SetContainerSize(width, height int) {
	v.mu.Lock()
	v.cfg.ContainerWidth = width
	v.cfg.ContainerHeight = height
	v.mu.Unlock()
	v.emit(events.ViewportChanged, map[string]int{"width": width, "height": height})
}

// SetMeasured records an item's actual rendered size, overriding the
// estimate for future geometry calculations (spec §4.1 measured-size
// cache).
func (v *Viewport) SetMeasured(index, size int) {
	v.mu.Lock()
	v.measured[index] = size
	v.mu.Unlock()
}

// ScrollPosition returns the current scroll offset.
func (v *Viewport) ScrollPosition() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollPosition
}

// ScrollBy applies a wheel/key-driven delta at time now, classifying
// velocity via the speed tracker and clamping the result to
// [0, maxScroll] (invariant 2). Returns the loading Output the caller's
// render loop should honor for prefetch sizing.
func (v *Viewport) ScrollBy(delta int, now time.Time) speed.Output {
	v.mu.Lock()
	dt := now.Sub(v.lastScrollAt)
	if v.lastScrollAt.IsZero() {
		dt = time.Millisecond
	}
	v.lastScrollAt = now

	total := v.totalItemsLocked()
	maxScroll := maxInt(0, geometry.TotalVirtualSize(total, v.cfg.EstimatedItemSize, v.measured)-v.containerSize())

	next := v.scrollPosition + delta
	if next < 0 {
		next = 0
	}
	if next > maxScroll {
		next = maxScroll
	}
	v.scrollPosition = next
	v.mu.Unlock()

	out := v.tracker.Update(delta, dt, now)
	v.emit(events.ScrollPositionChanged, next)
	return out
}

// ScrollToIndex scrolls so index is positioned per alignment (spec §4.1
// scrollToIndex), clamping only at the lower bound per
// geometry.ScrollPositionForIndex's documented asymmetry.
func (v *Viewport) ScrollToIndex(index int, alignment geometry.Alignment) {
	v.mu.Lock()
	total := v.totalItemsLocked()
	target := geometry.ScrollPositionForIndex(index, alignment, v.containerSize(), v.cfg.EstimatedItemSize, v.measured, total)
	v.scrollPosition = target
	v.mu.Unlock()
	v.emit(events.ScrollPositionChanged, target)
}

// TotalItems returns the collection's current authoritative item count, or
// 0 if no collection is wired.
func (v *Viewport) TotalItems() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalItemsLocked()
}

func (v *Viewport) totalItemsLocked() int {
	if v.coll == nil {
		return 0
	}
	return v.coll.TotalItems()
}

// VisibleRange computes the current overscanned visible range.
func (v *Viewport) VisibleRange() geometry.Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleRangeLocked()
}

func (v *Viewport) visibleRangeLocked() geometry.Range {
	total := v.totalItemsLocked()
	return geometry.VisibleRange(v.scrollPosition, v.containerSize(), v.cfg.EstimatedItemSize, total, v.cfg.Overscan, v.measured)
}

// ScrollbarMetrics returns the thumb size/position for the given track
// size (spec §4.1 custom scrollbar).
func (v *Viewport) ScrollbarMetrics(trackSize int) (thumbSize, thumbPosition int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	total := v.totalItemsLocked()
	virtualSize := geometry.TotalVirtualSize(total, v.cfg.EstimatedItemSize, v.measured)
	return geometry.ScrollbarMetrics(v.scrollPosition, virtualSize, v.containerSize(), trackSize)
}

// Render runs one full render-loop tick: triggers missing-range loads and
// placeholder synthesis on the collection, reconciles the rendered
// elements map against the visible range (releasing stale cells,
// instantiating new ones), and returns the composited frame.
func (v *Viewport) Render(ctx context.Context, now time.Time) string {
	visible := v.VisibleRange()

	if v.coll != nil {
		v.coll.LoadMissingRanges(ctx, visible, now)
		missing := geometry.MissingRanges(visible, v.loadedSnapshot(), v.coll.RangeSize())
		for _, r := range missing {
			v.coll.ShowPlaceholders(r)
		}
	}

	v.reconcile(visible)

	v.mu.Lock()
	v.lastVisible = visible
	v.mu.Unlock()

	return v.compositeFrame(visible)
}

// loadedSnapshot builds the rangeId->loaded map geometry.MissingRanges
// expects, spanning the ranges covering the visible window.
func (v *Viewport) loadedSnapshot() map[int]bool {
	out := make(map[int]bool)
	if v.coll == nil {
		return out
	}
	visible := v.VisibleRange()
	if visible.Empty() {
		return out
	}
	rangeSize := v.coll.RangeSize()
	first := visible.Start / rangeSize
	last := visible.End / rangeSize
	for rid := first; rid <= last; rid++ {
		out[rid] = v.coll.IsLoaded(rid)
	}
	return out
}

// reconcile releases rendered elements outside visible and instantiates
// elements newly within it (spec §4.5 pool cooperation).
func (v *Viewport) reconcile(visible geometry.Range) {
	if v.renderer == nil || v.coll == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	for idx, el := range v.rendered {
		if idx < visible.Start || idx > visible.End {
			v.renderer.Release(el)
			delete(v.rendered, idx)
		}
	}

	if visible.Empty() {
		return
	}
	for idx := visible.Start; idx <= visible.End; idx++ {
		if _, ok := v.rendered[idx]; ok {
			continue
		}
		slot := v.coll.Slot(idx)
		if slot.Kind == collection.SlotEmpty {
			continue
		}
		el := v.renderer.RenderItem(slot.Item, idx)
		if el == nil {
			continue
		}
		v.rendered[idx] = el
	}
}

func (v *Viewport) compositeFrame(visible geometry.Range) string {
	if v.renderer == nil || visible.Empty() {
		return ""
	}
	v.mu.Lock()
	ordered := make([]*render.RenderedElement, 0, visible.Len())
	for idx := visible.Start; idx <= visible.End; idx++ {
		if el, ok := v.rendered[idx]; ok {
			ordered = append(ordered, el)
		}
	}
	crossSize := v.orient.CrossAxisSize(v.cfg.ContainerWidth, v.cfg.ContainerHeight)
	v.mu.Unlock()

	return v.renderer.Frame(ordered, crossSize)
}

// Destroy releases every rendered element back to the pool (spec §5
// teardown).
func (v *Viewport) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.renderer == nil {
		v.rendered = make(map[int]*render.RenderedElement)
		return
	}
	for _, el := range v.rendered {
		v.renderer.Release(el)
	}
	v.rendered = make(map[int]*render.RenderedElement)
}

func (v *Viewport) emit(name events.Name, data any) {
	if v.bus != nil {
		v.bus.Emit(name, data)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

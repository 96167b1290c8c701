// Package collection implements the Collection Coordinator: the sparse
// item array, loaded/pending/failed range bookkeeping, range loading
// against an injected data adapter, and placeholder synthesis (spec §4.4).
package collection

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/geometry"
	"github.com/newbpydev/vlistengine/pkg/vlisterr"
)

const (
	// MaxConcurrent bounds in-flight range loads (spec §4.4/§5 back-pressure).
	MaxConcurrent = 4
	// MaxRangesPerTick bounds how many ranges loadMissingRanges queues at once.
	MaxRangesPerTick = 3
	// SampleSize bounds how many items analyzeDataStructure inspects.
	SampleSize = 20
	maskChar   = "█"
)

// SlotKind tags a sparse-array entry as the DESIGN NOTES' recommended
// tagged union (Empty | Placeholder | Loaded) rather than the original
// magic "_placeholder" property.
type SlotKind int

const (
	SlotEmpty SlotKind = iota
	SlotPlaceholder
	SlotLoaded
)

// Slot is one entry of the sparse item array.
type Slot struct {
	Kind SlotKind
	Item adapter.Item
}

// FailedRange records a load failure for backoff scheduling.
type FailedRange struct {
	Attempts  int
	LastError error
	Timestamp time.Time
}

// fieldStats is the learned min/max string length for one payload field,
// per spec §4.4 placeholder structure analysis.
type fieldStats struct {
	MinLen int
	MaxLen int
}

// Config configures a Collection at construction.
type Config struct {
	Adapter   adapter.DataAdapter
	Strategy  adapter.Strategy
	RangeSize int // if <= 0, DeriveRangeSize(10, 2) = 21 is used; the viewport's actual geometry is not consulted
}

// Collection owns the sparse item array and all range bookkeeping.
type Collection struct {
	mu sync.Mutex

	ad       adapter.DataAdapter
	strategy adapter.Strategy
	rangeSize int

	slots      map[int]Slot
	totalItems int

	loaded  map[int]bool
	pending map[int]bool
	failed  map[int]FailedRange

	placeholderFields map[string]fieldStats
	structureAnalyzed bool

	bus *events.Bus
}

// New validates cfg synchronously (spec §7 configuration errors) and
// returns a Collection.
func New(cfg Config, bus *events.Bus) (*Collection, error) {
	if cfg.Adapter == nil {
		return nil, vlisterr.Wrap(vlisterr.ErrMissingAdapterMethod, "adapter is nil")
	}
	if err := validateAdapter(cfg.Adapter, cfg.Strategy); err != nil {
		return nil, err
	}
	rangeSize := cfg.RangeSize
	if rangeSize <= 0 {
		rangeSize = DeriveRangeSize(10, 2)
	}

	return &Collection{
		ad:                cfg.Adapter,
		strategy:          cfg.Strategy,
		rangeSize:         rangeSize,
		slots:             make(map[int]Slot),
		loaded:            make(map[int]bool),
		pending:           make(map[int]bool),
		failed:            make(map[int]FailedRange),
		placeholderFields: make(map[string]fieldStats),
		bus:               bus,
	}, nil
}

func validateAdapter(ad adapter.DataAdapter, strategy adapter.Strategy) error {
	_, hasGeneric := ad.(adapter.GenericLoader)
	switch strategy {
	case adapter.StrategyPage:
		if _, ok := ad.(adapter.PageLoader); ok || hasGeneric {
			return nil
		}
	case adapter.StrategyOffset:
		if _, ok := ad.(adapter.RangeLoader); ok || hasGeneric {
			return nil
		}
	case adapter.StrategyCursor:
		if _, ok := ad.(adapter.CursorLoader); ok || hasGeneric {
			return nil
		}
	default:
		return vlisterr.Wrap(vlisterr.ErrInvalidStrategy, strategy.String())
	}
	return vlisterr.Wrap(vlisterr.ErrMissingAdapterMethod, fmt.Sprintf("strategy=%s", strategy))
}

// DeriveRangeSize computes a range size from viewport capacity and overscan
// per spec §4.4: clamp(10, ceil((itemsInViewport + 2*overscan) * 1.5), 100).
func DeriveRangeSize(itemsInViewport, overscan int) int {
	raw := int(math.Ceil(float64(itemsInViewport+2*overscan) * 1.5))
	switch {
	case raw < 10:
		return 10
	case raw > 100:
		return 100
	default:
		return raw
	}
}

// TotalItems returns the authoritative item count.
func (c *Collection) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalItems
}

// RangeSize returns the configured or derived range size.
func (c *Collection) RangeSize() int { return c.rangeSize }

// Slot returns the sparse-array entry at index i.
func (c *Collection) Slot(i int) Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[i]
}

// IsLoaded reports whether rangeId has completed successfully.
func (c *Collection) IsLoaded(rangeID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[rangeID]
}

// IsPending reports whether rangeId is currently in flight.
func (c *Collection) IsPending(rangeID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[rangeID]
}

// SetItems replaces the sparse array wholesale, marking every covering
// rangeId loaded, resetting failures, and re-analyzing placeholder
// structure (spec §4.4).
func (c *Collection) SetItems(items []adapter.Item) {
	c.mu.Lock()
	c.slots = make(map[int]Slot, len(items))
	for i, it := range items {
		c.slots[i] = Slot{Kind: SlotLoaded, Item: it}
	}
	c.totalItems = len(items)
	c.failed = make(map[int]FailedRange)
	c.loaded = make(map[int]bool)
	for rid := 0; rid*c.rangeSize < c.totalItems; rid++ {
		c.loaded[rid] = true
	}
	c.structureAnalyzed = false
	c.placeholderFields = make(map[string]fieldStats)
	c.analyzeLocked(items)
	c.mu.Unlock()

	c.emit(events.ItemsSet, len(items))
}

// SetTotalItems is the authoritative total, honored monotonically upward
// for massive-list mode (spec §4.4/§5): never decremented by incremental
// loads.
func (c *Collection) SetTotalItems(n int) {
	c.mu.Lock()
	changed := n > c.totalItems
	if changed {
		c.totalItems = n
	}
	c.mu.Unlock()

	if changed {
		c.emit(events.TotalChanged, n)
	}
}

// SetStrategy reconfigures the pagination strategy, clearing loaded and
// pending ranges and emitting strategy:changed (spec §6).
func (c *Collection) SetStrategy(strategy adapter.Strategy) error {
	if err := validateAdapter(c.ad, strategy); err != nil {
		return err
	}
	c.mu.Lock()
	c.strategy = strategy
	c.loaded = make(map[int]bool)
	c.pending = make(map[int]bool)
	c.mu.Unlock()

	c.emit(events.StrategyChanged, strategy)
	return nil
}

// LoadRange loads one range starting at offset (spec §4.4 step-by-step).
// Never returns an error to the caller: transient adapter failures are
// absorbed into failedRanges and a range:failed event (spec §7).
func (c *Collection) LoadRange(ctx context.Context, offset, limit int) []adapter.Item {
	return c.loadRange(ctx, offset, limit, time.Now())
}

// loadRange is LoadRange with the time a failure is recorded at supplied by
// the caller, so LoadMissingRanges measures backoff on one clock.
func (c *Collection) loadRange(ctx context.Context, offset, limit int, at time.Time) []adapter.Item {
	rangeID := offset / c.rangeSize

	c.mu.Lock()
	if c.pending[rangeID] {
		c.mu.Unlock()
		return nil
	}
	c.pending[rangeID] = true
	strategy := c.strategy
	c.mu.Unlock()

	result, err := c.callAdapter(ctx, strategy, offset, limit)
	if err != nil {
		// Clear pending before the failure is recorded and range:failed is
		// emitted, so listeners never see a failed range still in flight.
		c.mu.Lock()
		delete(c.pending, rangeID)
		c.mu.Unlock()
		c.recordFailure(rangeID, err, at)
		return nil
	}

	if result.Meta.Total != nil && *result.Meta.Total > c.TotalItems() {
		c.SetTotalItems(*result.Meta.Total)
	}

	c.mu.Lock()
	if !c.structureAnalyzed && len(result.Items) > 0 {
		c.analyzeLocked(result.Items)
		c.structureAnalyzed = true
	}
	c.mu.Unlock()

	c.UpdateLoadedData(result.Items, offset)

	c.mu.Lock()
	c.loaded[rangeID] = true
	delete(c.pending, rangeID)
	delete(c.failed, rangeID)
	c.mu.Unlock()

	c.emit(events.RangeLoaded, geometry.Range{Start: offset, End: offset + len(result.Items) - 1})
	return result.Items
}

func (c *Collection) callAdapter(ctx context.Context, strategy adapter.Strategy, offset, limit int) (adapter.Result, error) {
	switch strategy {
	case adapter.StrategyPage:
		if loader, ok := c.ad.(adapter.PageLoader); ok {
			page := offset/limit + 1
			return loader.LoadPage(ctx, adapter.PageParams{Page: page, Limit: limit})
		}
	case adapter.StrategyOffset:
		if loader, ok := c.ad.(adapter.RangeLoader); ok {
			return loader.LoadRange(ctx, adapter.RangeParams{Offset: offset, Limit: limit})
		}
	case adapter.StrategyCursor:
		if loader, ok := c.ad.(adapter.CursorLoader); ok {
			cursor, err := adapter.CursorForOffset(offset, c.loadedItemAt)
			if err != nil {
				return adapter.Result{}, err
			}
			return loader.LoadWithCursor(ctx, adapter.CursorParams{Cursor: cursor, Limit: limit})
		}
	}
	if generic, ok := c.ad.(adapter.GenericLoader); ok {
		return generic.Read(ctx, genericParams(strategy, offset, limit))
	}
	return adapter.Result{}, vlisterr.ErrMissingAdapterMethod
}

func genericParams(strategy adapter.Strategy, offset, limit int) any {
	switch strategy {
	case adapter.StrategyPage:
		return adapter.PageParams{Page: offset/limit + 1, Limit: limit}
	default:
		return adapter.RangeParams{Offset: offset, Limit: limit}
	}
}

func (c *Collection) loadedItemAt(index int) (adapter.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[index]
	if !ok || slot.Kind != SlotLoaded {
		return adapter.Item{}, false
	}
	return slot.Item, true
}

func (c *Collection) recordFailure(rangeID int, err error, at time.Time) {
	c.mu.Lock()
	f := c.failed[rangeID]
	f.Attempts++
	f.LastError = err
	f.Timestamp = at
	c.failed[rangeID] = f
	c.mu.Unlock()

	c.emit(events.RangeFailed, map[string]any{"rangeId": rangeID, "attempts": f.Attempts, "error": err})
}

// BackoffDelay returns the capped exponential backoff delay for the k-th
// retry (spec §4.4/§8 property 9): min(1000*2^(k-1), 30000) ms.
func BackoffDelay(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	ms := 1000 << (attempts - 1)
	if ms > 30000 || ms <= 0 {
		ms = 30000
	}
	return time.Duration(ms) * time.Millisecond
}

// LoadMissingRanges enumerates rangeIds covering visible not yet loaded or
// pending, honoring backoff on previously failed ranges, and loads up to
// MaxRangesPerTick of them (spec §4.4).
func (c *Collection) LoadMissingRanges(ctx context.Context, visible geometry.Range, now time.Time) {
	c.mu.Lock()
	if len(c.pending) >= MaxConcurrent {
		c.mu.Unlock()
		return
	}
	if visible.Empty() {
		c.mu.Unlock()
		return
	}
	firstRange := visible.Start / c.rangeSize
	lastRange := visible.End / c.rangeSize

	var candidates []int
	for rid := firstRange; rid <= lastRange && len(candidates) < MaxRangesPerTick; rid++ {
		if c.loaded[rid] || c.pending[rid] {
			continue
		}
		if f, failedBefore := c.failed[rid]; failedBefore {
			if now.Sub(f.Timestamp) < BackoffDelay(f.Attempts) {
				continue
			}
		}
		candidates = append(candidates, rid)
	}
	rangeSize := c.rangeSize
	c.mu.Unlock()

	var wg sync.WaitGroup
	sem := make(chan struct{}, MaxConcurrent)
	for _, rid := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(rid int) {
			defer wg.Done()
			defer func() { <-sem }()
			c.loadRange(ctx, rid*rangeSize, rangeSize, now)
		}(rid)
	}
	wg.Wait()
}

// UpdateLoadedData grows the sparse array with empty padding if needed and
// writes each item at offset+i, replacing any placeholder and emitting
// placeholders:replaced for those slots (spec §4.4). Never shrinks
// totalItems.
func (c *Collection) UpdateLoadedData(items []adapter.Item, offset int) {
	if len(items) == 0 {
		return
	}
	var replacedAny bool
	c.mu.Lock()
	for i, it := range items {
		idx := offset + i
		if slot, ok := c.slots[idx]; ok && slot.Kind == SlotPlaceholder {
			replacedAny = true
		}
		c.slots[idx] = Slot{Kind: SlotLoaded, Item: it}
	}
	if last := offset + len(items); last > c.totalItems {
		c.totalItems = last
	}
	c.mu.Unlock()

	if replacedAny {
		c.emit(events.PlaceholdersReplaced, geometry.Range{Start: offset, End: offset + len(items) - 1})
	}
}

// ShowPlaceholders fills empty slots within r with synthesized
// placeholders (spec §4.4; DESIGN.md resolves the range-vs-count
// inconsistency by rejecting the count form entirely — only the Range
// form is exposed here).
func (c *Collection) ShowPlaceholders(r geometry.Range) {
	if r.Empty() {
		return
	}
	c.mu.Lock()
	for i := r.Start; i <= r.End; i++ {
		if _, ok := c.slots[i]; ok {
			continue
		}
		c.slots[i] = Slot{Kind: SlotPlaceholder, Item: c.generatePlaceholderLocked(i)}
	}
	c.mu.Unlock()

	c.emit(events.PlaceholdersShown, r)
}

func (c *Collection) generatePlaceholderLocked(i int) adapter.Item {
	payload := make(map[string]any, len(c.placeholderFields))
	for field, stats := range c.placeholderFields {
		length := stats.MinLen
		if stats.MaxLen > stats.MinLen {
			length += rand.Intn(stats.MaxLen - stats.MinLen + 1)
		}
		masked := ""
		for j := 0; j < length; j++ {
			masked += maskChar
		}
		payload[field] = masked
	}
	return adapter.Item{ID: fmt.Sprintf("placeholder-%d", i), Payload: payload}
}

// IsPlaceholder reports whether the item at index i is a placeholder
// (spec's "_placeholder=true" check, expressed via the tagged Slot union).
func (c *Collection) IsPlaceholder(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[i].Kind == SlotPlaceholder
}

// analyzeLocked samples up to SampleSize items and records observed
// min/max string length per field (spec §4.4 analyzeDataStructure). Caller
// must hold c.mu.
func (c *Collection) analyzeLocked(items []adapter.Item) {
	n := len(items)
	if n > SampleSize {
		n = SampleSize
	}
	for _, it := range items[:n] {
		for field, v := range it.Payload {
			s, ok := v.(string)
			if !ok {
				continue
			}
			length := len(s)
			stats, exists := c.placeholderFields[field]
			if !exists {
				stats = fieldStats{MinLen: length, MaxLen: length}
			} else {
				if length < stats.MinLen {
					stats.MinLen = length
				}
				if length > stats.MaxLen {
					stats.MaxLen = length
				}
			}
			c.placeholderFields[field] = stats
		}
	}
}

// FailedRanges returns a snapshot of the failed-range bookkeeping.
func (c *Collection) FailedRanges() map[int]FailedRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]FailedRange, len(c.failed))
	for k, v := range c.failed {
		out[k] = v
	}
	return out
}

// ClearFailures drops all recorded failures, allowing immediate retry.
func (c *Collection) ClearFailures() {
	c.mu.Lock()
	c.failed = make(map[int]FailedRange)
	c.mu.Unlock()
}

func (c *Collection) emit(name events.Name, data any) {
	if c.bus != nil {
		c.bus.Emit(name, data)
	}
}

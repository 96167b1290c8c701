// Package vlist is the composition root: it builds the engine's components
// (events, orientation, pool, collection, viewport, renderer, intersection
// trigger, input translator), each constructed after the components it
// depends on, and exposes the result as a tea.Model. Grounded
// on the teacher's pkg/bubbly/runner.go Run()/Wrap() lifecycle pattern,
// generalized from wrapping an arbitrary Component into composing this
// engine's fixed pipeline directly.
package vlist

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/bubbleadapter"
	"github.com/newbpydev/vlistengine/pkg/collection"
	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/orientation"
	"github.com/newbpydev/vlistengine/pkg/pool"
	"github.com/newbpydev/vlistengine/pkg/render"
	"github.com/newbpydev/vlistengine/pkg/speed"
	"github.com/newbpydev/vlistengine/pkg/trigger"
	"github.com/newbpydev/vlistengine/pkg/viewport"
	"github.com/newbpydev/vlistengine/pkg/vtelemetry"
)

// Config configures a List's full enhancer chain at construction.
type Config struct {
	Adapter  adapter.DataAdapter
	Strategy adapter.Strategy
	Template render.Template

	Orientation orientation.Orientation
	Reverse     bool
	Align       orientation.CrossAlign

	EstimatedItemSize int
	Overscan          int
	RangeSize         int

	Pool       pool.Config
	Thresholds speed.Thresholds
	Trigger    trigger.Config
	Keys       bubbleadapter.KeyMap
	LineSize   int
	PageSize   int

	// SentryDSN wires panic reporting (spec's ambient telemetry stack);
	// empty disables reporting.
	SentryDSN string
}

func (c *Config) applyDefaults() {
	if c.EstimatedItemSize <= 0 {
		c.EstimatedItemSize = 1
	}
	if c.Overscan < 0 {
		c.Overscan = 2
	}
	if c.Thresholds == (speed.Thresholds{}) {
		c.Thresholds = speed.DefaultThresholds
	}
	if c.Keys == (bubbleadapter.KeyMap{}) {
		c.Keys = bubbleadapter.DefaultKeyMap
	}
	if c.LineSize <= 0 {
		c.LineSize = 1
	}
	if c.Pool.MaxPoolSize <= 0 {
		c.Pool.MaxPoolSize = 200
	}
	if c.Pool.MinPoolSize <= 0 {
		c.Pool.MinPoolSize = 20
	}
	c.Pool.Enabled = true
}

// List is the public, fully-composed engine instance: a tea.Model plus
// lifecycle control (spec §5 "a destroyed list MUST reject further public
// calls silently").
type List struct {
	mu        sync.Mutex
	destroyed bool

	bus        *events.Bus
	orient     *orientation.Manager
	pool       *pool.Pool
	renderer   *render.Renderer
	collection *collection.Collection
	viewport   *viewport.Viewport
	trigger    *trigger.Trigger
	translator *bubbleadapter.Translator
	telemetry  *vtelemetry.Reporter

	trackSize int // scrollbar track height/width, set from the last resize
}

// New composes the engine over cfg and returns the public List. Components
// are built in the order events → orientation → pool → collection →
// viewport → renderer → intersection trigger → input translator, each
// depending only on components already built.
func New(cfg Config) (*List, error) {
	cfg.applyDefaults()

	// element: the terminal program itself is the "element" — there is no
	// separate DOM node to allocate, so this stage is a no-op beyond
	// config validation, which happens as each subsequent stage validates
	// its own inputs (spec §7 "configuration errors... fail fast").

	telemetry, err := vtelemetry.NewReporter(cfg.SentryDSN)
	if err != nil {
		return nil, err
	}

	// events
	bus := events.New(func(event events.Name, recovered any) {
		telemetry.Capture(string(event), recovered)
	})

	// orientation
	orient, err := orientation.New(cfg.Orientation, cfg.Reverse, cfg.Align)
	if err != nil {
		return nil, err
	}

	// pool (built before the renderer, which acquires and releases its
	// cells).
	p, err := pool.New(cfg.Pool)
	if err != nil {
		return nil, err
	}

	// collection
	coll, err := collection.New(collection.Config{
		Adapter:   cfg.Adapter,
		Strategy:  cfg.Strategy,
		RangeSize: cfg.RangeSize,
	}, bus)
	if err != nil {
		return nil, err
	}

	// viewport (depends on orientation + collection, built ahead of
	// renderer because renderer is wired into it, not the reverse)
	vp := viewport.New(viewport.Config{
		EstimatedItemSize: cfg.EstimatedItemSize,
		Overscan:          cfg.Overscan,
	}, orient, bus)
	vp.SetCollection(coll)

	// renderer
	tmpl := cfg.Template
	if tmpl == nil {
		tmpl = defaultTemplate
	}
	renderer := render.New(p, orient, tmpl, telemetry)
	vp.SetRenderer(renderer)

	// intersection triggers
	trig := trigger.New(cfg.Trigger, bus)

	translator := bubbleadapter.New(vp, cfg.Keys, cfg.LineSize, cfg.PageSize)

	return &List{
		bus:        bus,
		orient:     orient,
		pool:       p,
		renderer:   renderer,
		collection: coll,
		viewport:   vp,
		trigger:    trig,
		translator: translator,
		telemetry:  telemetry,
	}, nil
}

// Bus exposes the engine's event bus for external subscribers.
func (l *List) Bus() *events.Bus { return l.bus }

// Collection exposes the engine's collection coordinator, e.g. for a
// caller driving SetItems directly.
func (l *List) Collection() *collection.Collection { return l.collection }

func defaultTemplate(item adapter.Item, index int) string {
	if name, ok := item.Payload["name"].(string); ok {
		return name
	}
	return item.ID
}

// Init implements tea.Model.
func (l *List) Init() tea.Cmd { return nil }

// Update implements tea.Model: input/resize messages are translated into
// viewport calls, a resize also sets the scrollbar track size, and the
// "ctrl+c" and "q" keys return tea.Quit; every other message is ignored.
// After Destroy every message is ignored (spec §5: a destroyed list
// rejects further public calls silently).
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	l.mu.Lock()
	destroyed := l.destroyed
	l.mu.Unlock()
	if destroyed {
		return l, nil
	}

	now := time.Now()
	l.translator.Handle(msg, now)

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		l.trackSize = l.orient.MainAxisSize(ws.Width, ws.Height)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q":
			return l, tea.Quit
		}
	}
	return l, nil
}

// View implements tea.Model: runs one render-loop tick, checks the
// pagination trigger against the freshly computed visible range, and
// composites the frame with a scrollbar alongside it.
func (l *List) View() string {
	l.mu.Lock()
	destroyed := l.destroyed
	l.mu.Unlock()
	if destroyed {
		return ""
	}

	now := time.Now()
	ctx := context.Background()
	frame := l.viewport.Render(ctx, now)

	visible := l.viewport.VisibleRange()
	total := l.viewport.TotalItems()
	l.trigger.Check(visible, total, now)

	track := l.trackSize
	if track <= 0 {
		track = 20
	}
	thumbSize, thumbPos := l.viewport.ScrollbarMetrics(track)
	bar := renderScrollbar(track, thumbSize, thumbPos)

	return lipgloss.JoinHorizontal(lipgloss.Top, frame, " ", bar)
}

func renderScrollbar(track, thumbSize, thumbPos int) string {
	cells := make([]string, track)
	for i := range cells {
		if i >= thumbPos && i < thumbPos+thumbSize {
			cells[i] = "█"
		} else {
			cells[i] = "│"
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, cells...)
}

// Destroy tears down every resource the list owns: rendered elements are
// released, the pool is cleared, the event bus is closed, and pending
// telemetry is flushed (spec §5: "clear all listeners, pending maps,
// pool, sentinels, overlays, and DOM").
func (l *List) Destroy() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	l.mu.Unlock()

	l.bus.Emit(events.Destroyed, nil)
	l.viewport.Destroy()
	l.pool.Clear()
	l.bus.Close()
	l.telemetry.Flush(2)
}

// Package trigger implements the Intersection-Based Pagination Trigger
// (spec §4.8): sentinel positions at the top and/or bottom of the scroll
// container that fire load:more:triggered when the visible range reaches
// them. A terminal program has no IntersectionObserver to bind to, so
// intersection is computed directly against the current visibleRange once
// per render (spec's own reinterpretation note, SPEC_FULL.md).
package trigger

import (
	"time"

	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/geometry"
)

// Position is which sentinel(s) are armed.
type Position int

const (
	PositionTop Position = 1 << iota
	PositionBottom
)

func (p Position) hasTop() bool    { return p&PositionTop != 0 }
func (p Position) hasBottom() bool { return p&PositionBottom != 0 }

// Config configures a Trigger.
type Config struct {
	Position   Position
	DebounceMs int
	MaxTriggers int // 0 means unbounded
}

// Trigger watches a visible range against sentinel indices near the ends
// of the item list and emits load:more:triggered on intersection.
type Trigger struct {
	cfg Config
	bus *events.Bus

	lastFireTop    time.Time
	lastFireBottom time.Time
	count          int
}

// New constructs a Trigger.
func New(cfg Config, bus *events.Bus) *Trigger {
	return &Trigger{cfg: cfg, bus: bus}
}

// Check evaluates the current visibleRange against totalItems and the
// sentinel position, firing load:more:triggered when a sentinel
// intersects, subject to the debounce window and maxTriggers cap.
func (t *Trigger) Check(visible geometry.Range, totalItems int, now time.Time) {
	if totalItems <= 0 || visible.Empty() {
		return
	}
	if t.cfg.MaxTriggers > 0 && t.count >= t.cfg.MaxTriggers {
		return
	}

	if t.cfg.Position.hasTop() && visible.Start <= 0 {
		t.fire("top", now)
	}
	if t.cfg.Position.hasBottom() && visible.End >= totalItems-1 {
		t.fire("bottom", now)
	}
}

func (t *Trigger) fire(position string, now time.Time) {
	var last *time.Time
	if position == "top" {
		last = &t.lastFireTop
	} else {
		last = &t.lastFireBottom
	}

	debounce := time.Duration(t.cfg.DebounceMs) * time.Millisecond
	if !last.IsZero() && now.Sub(*last) < debounce {
		return
	}
	*last = now

	t.count++
	t.emit(position, now)
}

func (t *Trigger) emit(position string, now time.Time) {
	if t.bus == nil {
		return
	}
	t.bus.Emit(events.LoadMoreTriggered, map[string]any{
		"direction":    position,
		"position":     position,
		"triggerCount": t.count,
		"timestamp":    now,
	})
}

// TriggerCount returns how many times this trigger has fired.
func (t *Trigger) TriggerCount() int { return t.count }

// Reset clears debounce timestamps and the trigger count, e.g. on
// strategy change.
func (t *Trigger) Reset() {
	t.lastFireTop = time.Time{}
	t.lastFireBottom = time.Time{}
	t.count = 0
}

// Package adapter defines the engine's data boundary: the pluggable
// source of item ranges (spec §6). Any one of PageLoader, RangeLoader, or
// CursorLoader satisfies a given pagination Strategy; Generic is the
// fallback every strategy can also use.
package adapter

import (
	"context"

	"github.com/newbpydev/vlistengine/pkg/vlisterr"
)

var errCursorPredecessorMissing = vlisterr.ErrCursorPredecessorMissing

// Item is an opaque payload the collection coordinator stores and the
// template renders. ID must be stable and non-empty; items must not set
// the reserved "_placeholder" key (spec §6).
type Item struct {
	ID      string
	Payload map[string]any
}

// Strategy selects which pagination call shape the collection coordinator
// uses (spec §4.4).
type Strategy int

const (
	StrategyPage Strategy = iota
	StrategyOffset
	StrategyCursor
)

func (s Strategy) String() string {
	switch s {
	case StrategyPage:
		return "page"
	case StrategyOffset:
		return "offset"
	case StrategyCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// PageParams is the call shape for StrategyPage.
type PageParams struct {
	Page  int
	Limit int
}

// RangeParams is the call shape for StrategyOffset.
type RangeParams struct {
	Offset int
	Limit  int
}

// CursorParams is the call shape for StrategyCursor.
type CursorParams struct {
	Cursor string
	Limit  int
}

// Meta carries optional response metadata.
type Meta struct {
	Total *int
}

// AdapterError is the shape the Generic fallback uses to report a load
// failure without an actual Go error (spec §6: "read(params) →
// Promise<{items, meta?, error?}>").
type AdapterError struct {
	Message string
}

func (e *AdapterError) Error() string { return e.Message }

// Result is what every loader returns.
type Result struct {
	Items []Item
	Meta  Meta
}

// PageLoader satisfies StrategyPage.
type PageLoader interface {
	LoadPage(ctx context.Context, params PageParams) (Result, error)
}

// RangeLoader satisfies StrategyOffset.
type RangeLoader interface {
	LoadRange(ctx context.Context, params RangeParams) (Result, error)
}

// CursorLoader satisfies StrategyCursor.
type CursorLoader interface {
	LoadWithCursor(ctx context.Context, params CursorParams) (Result, error)
}

// GenericLoader is the fallback any strategy may use when a dedicated
// loader method isn't implemented.
type GenericLoader interface {
	Read(ctx context.Context, params any) (Result, error)
}

// DataAdapter is the full capability set an adapter may implement. A
// concrete adapter need only implement the method(s) its chosen Strategy
// requires, plus (optionally) GenericLoader as a fallback; Supports
// reports which are present.
type DataAdapter interface {
	Supports(strategy Strategy) bool
}

// CursorForOffset resolves DESIGN.md's Open Question 2: cursor equals the
// id of the item loaded at offset-1, or "" for offset 0. loadedAt must return
// (item, true) when the item at that index has actually been loaded (not a
// placeholder). Returns an error if a non-zero offset's predecessor isn't
// loaded — the engine cannot fabricate a cursor for data it has never seen.
func CursorForOffset(offset int, loadedAt func(index int) (Item, bool)) (string, error) {
	if offset <= 0 {
		return "", nil
	}
	item, ok := loadedAt(offset - 1)
	if !ok {
		return "", errCursorPredecessorMissing
	}
	return item.ID, nil
}

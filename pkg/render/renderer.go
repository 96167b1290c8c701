// Package render implements the Renderer: instantiating item elements via
// a user template, joining them along the main axis in index order,
// applying orientation/cross-axis policy, and cooperating with the element pool
// (spec §4.5/§6).
package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/orientation"
	"github.com/newbpydev/vlistengine/pkg/pool"
	"github.com/newbpydev/vlistengine/pkg/vtelemetry"
)

// Template instantiates the display string for an item at index. Per spec
// §6 it MUST be total (never panic); Renderer recovers and substitutes a
// fallback node if it does anyway, matching the original signature's
// `string | Element` union collapsed onto the string branch (documented
// in SPEC_FULL.md — a lipgloss-rendered string already composites into
// larger frames, so a separate Element branch adds nothing here).
type Template func(item adapter.Item, index int) string

const itemCellType = "item"

// RenderedElement pairs a pooled Cell with the index it currently
// represents, the entry stored in Viewport's renderedElements map.
type RenderedElement struct {
	*pool.Cell
	Index int
}

// Renderer instantiates and positions item elements.
type Renderer struct {
	pool      *pool.Pool
	orient    *orientation.Manager
	template  Template
	telemetry *vtelemetry.Reporter
}

// New constructs a Renderer. telemetry may be nil (falls back to a no-op
// reporter behavior per vtelemetry.Reporter's zero value).
func New(p *pool.Pool, orient *orientation.Manager, tmpl Template, telemetry *vtelemetry.Reporter) *Renderer {
	return &Renderer{pool: p, orient: orient, template: tmpl, telemetry: telemetry}
}

// RenderItem acquires a cell from the pool, runs the template with panic
// isolation, and tags it with item-id/index (spec §4.5 "set
// data-item-id, data-item-index").
func (r *Renderer) RenderItem(item adapter.Item, index int) *RenderedElement {
	cell := r.pool.Acquire(itemCellType)
	if cell == nil {
		return nil
	}

	cell.Content = r.safeRender(item, index)
	cell.Attrs["data-item-id"] = item.ID
	cell.Attrs["data-item-index"] = strconv.Itoa(index)
	cell.Width = lipgloss.Width(cell.Content)
	cell.Height = lipgloss.Height(cell.Content)

	return &RenderedElement{Cell: cell, Index: index}
}

// safeRender recovers from a panicking template and renders a fallback
// error node instead (spec §6/§7).
func (r *Renderer) safeRender(item adapter.Item, index int) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := r.telemetry.Capture("template", rec)
			out = fallbackStyle.Render(fmt.Sprintf("⚠ render error (item %s): %s", item.ID, msg))
		}
	}()
	return r.template(item, index)
}

var fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true)

// Release returns a rendered element's cell to the pool (spec §4.5:
// "detach and release to pool").
func (r *Renderer) Release(el *RenderedElement) {
	if el == nil {
		return
	}
	r.pool.Release(el.Cell)
}

// Position styles one rendered element's content with the orientation's
// cross-axis size and alignment. No main-axis offset is applied here; an
// element's place along the main axis comes from its order in Frame.
func (r *Renderer) Position(el *RenderedElement, crossSize int) string {
	style := r.orient.Position(el.Content, 0, crossSize, el.Width)
	return style.Render(el.Content)
}

// Frame composites a full ordered slice of rendered elements into one
// string along the configured main axis, honoring Reverse.
func (r *Renderer) Frame(elements []*RenderedElement, crossSize int) string {
	ordered := elements
	if r.orient.Reverse {
		ordered = make([]*RenderedElement, len(elements))
		for i, el := range elements {
			ordered[len(elements)-1-i] = el
		}
	}

	parts := make([]string, len(ordered))
	for i, el := range ordered {
		parts[i] = r.Position(el, crossSize)
	}

	if r.orient.Orientation == orientation.Horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Package bubbleadapter translates bubbletea's tea.KeyMsg/tea.MouseMsg/
// tea.WindowSizeMsg into calls against the engine's Viewport, the terminal
// program's equivalent of the original browser's wheel/resize event
// listeners (spec §4.1). Grounded on the teacher's (now-deleted)
// pkg/bubble/event_translator.go, which maps the same three message types
// to its own Event union via a registered-mapper list; this package keeps
// that one-message-type-per-branch shape but drives the viewport directly
// since there is no separate event-union type to translate into.
package bubbleadapter

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/newbpydev/vlistengine/pkg/geometry"
	"github.com/newbpydev/vlistengine/pkg/viewport"
)

// KeyMap names the key bindings the translator recognizes. Field values
// are compared against tea.KeyMsg.String().
type KeyMap struct {
	Up, Down             string
	PageUp, PageDown     string
	Home, End            string
}

// DefaultKeyMap mirrors common terminal pager bindings.
var DefaultKeyMap = KeyMap{
	Up: "up", Down: "down",
	PageUp: "pgup", PageDown: "pgdown",
	Home: "home", End: "end",
}

// Translator wires bubbletea input/resize messages to one Viewport.
type Translator struct {
	vp       *viewport.Viewport
	keys     KeyMap
	lineSize int // scroll delta per arrow key / wheel notch, in cells
	pageSize int // scroll delta per page key, in cells
}

// New constructs a Translator. lineSize/pageSize are in the same cell
// units as the viewport's EstimatedItemSize.
func New(vp *viewport.Viewport, keys KeyMap, lineSize, pageSize int) *Translator {
	if lineSize <= 0 {
		lineSize = 1
	}
	if pageSize <= 0 {
		pageSize = lineSize * 10
	}
	return &Translator{vp: vp, keys: keys, lineSize: lineSize, pageSize: pageSize}
}

// Handle applies msg to the wired viewport, returning true if msg was a
// recognized input/resize message.
func (t *Translator) Handle(msg tea.Msg, now time.Time) bool {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		t.vp.SetContainerSize(m.Width, m.Height)
		return true
	case tea.MouseMsg:
		return t.handleMouse(m, now)
	case tea.KeyMsg:
		return t.handleKey(m, now)
	default:
		return false
	}
}

func (t *Translator) handleMouse(m tea.MouseMsg, now time.Time) bool {
	switch m.Type {
	case tea.MouseWheelUp:
		t.vp.ScrollBy(-t.lineSize, now)
		return true
	case tea.MouseWheelDown:
		t.vp.ScrollBy(t.lineSize, now)
		return true
	default:
		return false
	}
}

func (t *Translator) handleKey(m tea.KeyMsg, now time.Time) bool {
	switch m.String() {
	case t.keys.Up:
		t.vp.ScrollBy(-t.lineSize, now)
	case t.keys.Down:
		t.vp.ScrollBy(t.lineSize, now)
	case t.keys.PageUp:
		t.vp.ScrollBy(-t.pageSize, now)
	case t.keys.PageDown:
		t.vp.ScrollBy(t.pageSize, now)
	case t.keys.Home:
		t.vp.ScrollToIndex(0, geometry.AlignStart)
	case t.keys.End:
		if total := t.vp.TotalItems(); total > 0 {
			t.vp.ScrollToIndex(total-1, geometry.AlignEnd)
		}
	default:
		return false
	}
	return true
}

// RenderCmd returns a tea.Cmd that runs one viewport render tick and wraps
// the result in a FrameMsg, for a composition root that wants rendering
// driven by the bubbletea command loop rather than inline in View().
func (t *Translator) RenderCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return FrameMsg{Content: t.vp.Render(ctx, time.Now())}
	}
}

// FrameMsg carries a freshly composited viewport frame.
type FrameMsg struct{ Content string }

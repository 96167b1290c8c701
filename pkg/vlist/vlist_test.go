package vlist

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/orientation"
)

func testItems(n int) []adapter.Item {
	out := make([]adapter.Item, n)
	for i := range out {
		out[i] = adapter.Item{ID: string(rune('a' + i%26)), Payload: map[string]any{"name": "row"}}
	}
	return out
}

func newTestList(t *testing.T) *List {
	t.Helper()
	mem := &adapter.Memory{Items: testItems(200), Total: 200}
	l, err := New(Config{
		Adapter:           mem,
		Strategy:          adapter.StrategyOffset,
		Orientation:       orientation.Vertical,
		Align:             orientation.CrossStart,
		EstimatedItemSize: 1,
		Overscan:          2,
	})
	require.NoError(t, err)
	l.viewport.SetContainerSize(20, 10)
	l.collection.SetTotalItems(200)
	return l
}

func TestNew_ComposesWithoutError(t *testing.T) {
	l := newTestList(t)
	assert.NotNil(t, l.Bus())
	assert.NotNil(t, l.Collection())
}

func TestUpdate_ArrowKeyScrollsViewport(t *testing.T) {
	l := newTestList(t)
	_, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.viewport.ScrollPosition())
}

func TestUpdate_QuitKeyReturnsQuitCmd(t *testing.T) {
	l := newTestList(t)
	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
}

func TestView_ProducesNonEmptyFrame(t *testing.T) {
	l := newTestList(t)
	out := l.View()
	assert.NotEmpty(t, out)
}

func TestDestroy_RejectsFurtherCallsSilently(t *testing.T) {
	l := newTestList(t)
	l.Destroy()

	assert.Equal(t, "", l.View())

	model, cmd := l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Same(t, l, model)
	assert.Nil(t, cmd)
}

func TestDestroy_IsIdempotent(t *testing.T) {
	l := newTestList(t)
	l.Destroy()
	assert.NotPanics(t, func() { l.Destroy() })
}

func TestScrollbar_RendersAlongsideFrame(t *testing.T) {
	l := newTestList(t)
	l.trackSize = 5
	out := l.View()
	assert.NotEmpty(t, out)
	_ = time.Now()
}

package bubbleadapter

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/collection"
	"github.com/newbpydev/vlistengine/pkg/orientation"
	"github.com/newbpydev/vlistengine/pkg/viewport"
)

func items(n int) []adapter.Item {
	out := make([]adapter.Item, n)
	for i := range out {
		out[i] = adapter.Item{ID: string(rune('a' + i))}
	}
	return out
}

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	orient, err := orientation.New(orientation.Vertical, false, orientation.CrossStart)
	require.NoError(t, err)
	vp := viewport.New(viewport.Config{EstimatedItemSize: 1, ContainerWidth: 20, ContainerHeight: 10}, orient, nil)

	ad := &adapter.Memory{Items: items(1000), Total: 1000}
	coll, err := collection.New(collection.Config{Adapter: ad, Strategy: adapter.StrategyOffset, RangeSize: 10}, nil)
	require.NoError(t, err)
	coll.SetTotalItems(1000)
	vp.SetCollection(coll)

	return New(vp, DefaultKeyMap, 1, 10)
}

func TestHandle_WindowSizeResizesContainer(t *testing.T) {
	tr := newTestTranslator(t)
	handled := tr.Handle(tea.WindowSizeMsg{Width: 100, Height: 40}, time.Now())
	assert.True(t, handled)
	// Container height 40 at item size 1 and no overscan shows 40 items.
	assert.Equal(t, 40, tr.vp.VisibleRange().Len())
}

func TestHandle_ArrowKeysScroll(t *testing.T) {
	tr := newTestTranslator(t)
	tr.Handle(tea.KeyMsg{Type: tea.KeyDown}, time.Now())
	assert.Equal(t, 1, tr.vp.ScrollPosition())
}

func TestHandle_PageDownScrollsByPageSize(t *testing.T) {
	tr := newTestTranslator(t)
	tr.Handle(tea.KeyMsg{Type: tea.KeyPgDown}, time.Now())
	assert.Equal(t, 10, tr.vp.ScrollPosition())
}

func TestHandle_HomeAndEndJumpToEdges(t *testing.T) {
	tr := newTestTranslator(t)
	tr.Handle(tea.KeyMsg{Type: tea.KeyEnd}, time.Now())
	assert.Greater(t, tr.vp.ScrollPosition(), 0)

	tr.Handle(tea.KeyMsg{Type: tea.KeyHome}, time.Now())
	assert.Equal(t, 0, tr.vp.ScrollPosition())
}

func TestHandle_MouseWheelScrolls(t *testing.T) {
	tr := newTestTranslator(t)
	tr.Handle(tea.MouseMsg{Type: tea.MouseWheelDown}, time.Now())
	assert.Equal(t, 1, tr.vp.ScrollPosition())
}

func TestHandle_UnrecognizedMessageNotHandled(t *testing.T) {
	tr := newTestTranslator(t)
	assert.False(t, tr.Handle(struct{}{}, time.Now()))
}

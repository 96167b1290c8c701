package viewport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/vlistengine/pkg/adapter"
	"github.com/newbpydev/vlistengine/pkg/collection"
	"github.com/newbpydev/vlistengine/pkg/geometry"
	"github.com/newbpydev/vlistengine/pkg/orientation"
	"github.com/newbpydev/vlistengine/pkg/pool"
	"github.com/newbpydev/vlistengine/pkg/render"
)

func items(n int) []adapter.Item {
	out := make([]adapter.Item, n)
	for i := range out {
		out[i] = adapter.Item{ID: string(rune('a' + i))}
	}
	return out
}

func newTestViewport(t *testing.T, total int) (*Viewport, *collection.Collection) {
	t.Helper()
	orient, err := orientation.New(orientation.Vertical, false, orientation.CrossStart)
	require.NoError(t, err)

	vp := New(Config{EstimatedItemSize: 1, Overscan: 1, ContainerWidth: 20, ContainerHeight: 5}, orient, nil)

	ad := &adapter.Memory{Items: items(total), Total: total}
	coll, err := collection.New(collection.Config{Adapter: ad, Strategy: adapter.StrategyOffset, RangeSize: 10}, nil)
	require.NoError(t, err)
	coll.SetTotalItems(total)
	vp.SetCollection(coll)

	p, err := pool.New(pool.Config{MaxPoolSize: 50, MinPoolSize: 5, Enabled: true})
	require.NoError(t, err)
	tmpl := func(item adapter.Item, index int) string { return item.ID }
	vp.SetRenderer(render.New(p, orient, tmpl, nil))

	return vp, coll
}

func TestVisibleRange_TracksScrollPosition(t *testing.T) {
	vp, _ := newTestViewport(t, 1000)
	r := vp.VisibleRange()
	assert.Equal(t, 0, r.Start)

	vp.ScrollBy(50, time.Now())
	r2 := vp.VisibleRange()
	assert.Greater(t, r2.Start, r.Start)
}

func TestScrollBy_ClampsToMaxScroll(t *testing.T) {
	vp, _ := newTestViewport(t, 10)
	vp.ScrollBy(1_000_000, time.Now())
	assert.LessOrEqual(t, vp.ScrollPosition(), 10)
}

func TestScrollBy_NeverNegative(t *testing.T) {
	vp, _ := newTestViewport(t, 1000)
	vp.ScrollBy(-500, time.Now())
	assert.Equal(t, 0, vp.ScrollPosition())
}

func TestScrollToIndex_AlignStart(t *testing.T) {
	vp, _ := newTestViewport(t, 1000)
	vp.ScrollToIndex(100, geometry.AlignStart)
	assert.Equal(t, 100, vp.ScrollPosition())
}

func TestRender_LoadsAndComposesVisibleItems(t *testing.T) {
	vp, coll := newTestViewport(t, 100)
	out := vp.Render(context.Background(), time.Now())
	assert.True(t, coll.IsLoaded(0))
	assert.NotEmpty(t, out)
}

func TestRender_ReleasesElementsOutsideVisibleRange(t *testing.T) {
	vp, _ := newTestViewport(t, 1000)
	vp.Render(context.Background(), time.Now())

	vp.mu.Lock()
	initialRendered := len(vp.rendered)
	vp.mu.Unlock()
	assert.Greater(t, initialRendered, 0)

	vp.ScrollBy(500, time.Now())
	vp.Render(context.Background(), time.Now())

	vp.mu.Lock()
	defer vp.mu.Unlock()
	for idx := range vp.rendered {
		assert.GreaterOrEqual(t, idx, vp.lastVisible.Start)
		assert.LessOrEqual(t, idx, vp.lastVisible.End)
	}
}

func TestScrollbarMetrics_ThumbShrinksWithLargerTotal(t *testing.T) {
	small, _ := newTestViewport(t, 10)
	large, _ := newTestViewport(t, 100_000)

	thumbSmall, _ := small.ScrollbarMetrics(100)
	thumbLarge, _ := large.ScrollbarMetrics(100)
	assert.Greater(t, thumbSmall, thumbLarge)
}

func TestDestroy_ReleasesAllRenderedElements(t *testing.T) {
	vp, _ := newTestViewport(t, 100)
	vp.Render(context.Background(), time.Now())
	vp.Destroy()

	vp.mu.Lock()
	defer vp.mu.Unlock()
	assert.Empty(t, vp.rendered)
}

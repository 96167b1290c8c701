package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, max, min int) *Pool {
	t.Helper()
	p, err := New(Config{MaxPoolSize: max, MinPoolSize: min, Enabled: true})
	require.NoError(t, err)
	return p
}

func TestNew_RejectsNonPositiveMax(t *testing.T) {
	_, err := New(Config{MaxPoolSize: 0})
	assert.Error(t, err)
}

func TestNew_RejectsMinGreaterThanMax(t *testing.T) {
	_, err := New(Config{MaxPoolSize: 2, MinPoolSize: 5})
	assert.Error(t, err)
}

// S4 from spec §8.
func TestPool_S4_RecyclingStats(t *testing.T) {
	p := newTestPool(t, 4, 1)

	cells := make([]*Cell, 4)
	for i := range cells {
		cells[i] = p.Acquire("")
	}
	for _, c := range cells {
		p.Release(c)
	}
	for i := range cells {
		cells[i] = p.Acquire("")
	}

	stats := p.Stats()
	assert.Equal(t, 4, stats.TotalCreated)
	assert.Equal(t, 4, stats.TotalRecycled)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.0001)
	assert.LessOrEqual(t, p.Size(), 4)
}

func TestAcquireRelease_ResetsContent(t *testing.T) {
	p := newTestPool(t, 4, 1)
	c := p.Acquire("row")
	c.Content = "hello"
	c.Attrs["data-item-id"] = "42"
	p.Release(c)

	reacquired := p.Acquire("row")
	assert.Equal(t, "", reacquired.Content)
	assert.Empty(t, reacquired.Attrs)
}

func TestAcquire_ReturnsNilWhenDisabledAndFull(t *testing.T) {
	p, err := New(Config{MaxPoolSize: 1, MinPoolSize: 0, Enabled: false})
	require.NoError(t, err)
	first := p.Acquire("")
	require.NotNil(t, first)
	second := p.Acquire("")
	assert.Nil(t, second)
}

func TestRelease_DestroysOverSubPoolCapacity(t *testing.T) {
	p := newTestPool(t, 8, 0) // subCapacity = 8/4 = 2
	p.cfg.Reuse = ReuseSameType

	var cells []*Cell
	for i := 0; i < 5; i++ {
		cells = append(cells, p.Acquire("row"))
	}
	for _, c := range cells {
		p.Release(c)
	}
	assert.LessOrEqual(t, len(p.idle["row"]), 2)
}

func TestSelectLRU_PrefersLeastRecentlyUsed(t *testing.T) {
	p := newTestPool(t, 4, 0)
	p.cfg.Selection = SelectLRU

	a := p.Acquire("row")
	b := p.Acquire("row")
	p.Release(a)
	time.Sleep(time.Millisecond)
	p.Release(b)

	next := p.Acquire("row")
	assert.Equal(t, a.ID, next.ID)
}

func TestCleanup_NeverBelowMinPoolSize(t *testing.T) {
	p := newTestPool(t, 4, 2)
	var cells []*Cell
	for i := 0; i < 4; i++ {
		cells = append(cells, p.Acquire(""))
	}
	for _, c := range cells {
		p.Release(c)
	}

	p.Cleanup(time.Now().Add(10 * time.Hour))
	assert.GreaterOrEqual(t, p.Size(), 2)
}

func TestOptimize_TrimsToward80Percent(t *testing.T) {
	p := newTestPool(t, 10, 0)
	var cells []*Cell
	for i := 0; i < 10; i++ {
		cells = append(cells, p.Acquire(""))
	}
	for _, c := range cells {
		p.Release(c)
	}
	p.Optimize()
	assert.LessOrEqual(t, p.Size(), 8)
}

func TestResize_ShrinksAndOptimizes(t *testing.T) {
	p := newTestPool(t, 10, 0)
	var cells []*Cell
	for i := 0; i < 10; i++ {
		cells = append(cells, p.Acquire(""))
	}
	for _, c := range cells {
		p.Release(c)
	}
	p.Resize(4)
	assert.LessOrEqual(t, p.Size(), 4)
}

// Property: acquire, release, acquire yields equivalent content/attrs to a
// fresh cell (spec §8 property 5).
func TestProperty_AcquireReleaseAcquire(t *testing.T) {
	p := newTestPool(t, 4, 0)
	first := p.Acquire("item")
	first.Content = "populated"
	p.Release(first)

	second := p.Acquire("item")
	fresh := newCell("item", time.Now())
	assert.Equal(t, fresh.Content, second.Content)
	assert.Equal(t, len(fresh.Attrs), len(second.Attrs))
}

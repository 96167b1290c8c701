package speed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_SlowClassifiesImmediate(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	out := tr.Update(1, 100*time.Millisecond, time.Now())
	assert.Equal(t, StrategyImmediate, out.Strategy)
	assert.Equal(t, 0, out.DeferTimeoutMs)
}

func TestTracker_FastClassifiesDefer(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	// Drive several large, quick deltas so the smoothed velocity exceeds Fast.
	var final Output
	for i := 0; i < 6; i++ {
		final = tr.Update(500, time.Millisecond, time.Now())
	}
	require.Equal(t, StrategyDefer, final.Strategy)
	assert.Equal(t, 10, final.PrefetchCount)
}

func TestTracker_MinimumDtFloor(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	out := tr.Update(10, 0, time.Now())
	assert.GreaterOrEqual(t, out.PrefetchCount, 0)
}

func TestTracker_DirectionSign(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	tr.Update(10, 10*time.Millisecond, time.Now())
	assert.Equal(t, 1, tr.Direction())
	tr.Update(-10, 10*time.Millisecond, time.Now())
	assert.Equal(t, -1, tr.Direction())
}

func TestTracker_SignificantDirectionChangeRequiresSpeed(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	tr.Update(5, 1000*time.Millisecond, time.Now()) // very slow
	assert.False(t, tr.SignificantDirectionChange(-5))

	tr2 := New(DefaultThresholds, 10)
	for i := 0; i < 5; i++ {
		tr2.Update(500, time.Millisecond, time.Now())
	}
	assert.True(t, tr2.SignificantDirectionChange(-500))
}

func TestTracker_TimeToSlowDecays(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	for i := 0; i < 5; i++ {
		tr.Update(500, time.Millisecond, time.Now())
	}
	d := tr.TimeToSlow()
	assert.Greater(t, d, time.Duration(0))
}

func TestTracker_Reset(t *testing.T) {
	tr := New(DefaultThresholds, 10)
	tr.Update(500, time.Millisecond, time.Now())
	tr.Reset()
	assert.Equal(t, 0.0, tr.Velocity())
	assert.Equal(t, 0, tr.Direction())
}

// Package speed implements the Speed Tracker: scroll velocity smoothing and
// fast/slow/moderate classification into a loading Strategy with a prefetch
// count and defer timeout (spec §4.2). There is no separate idle class: zero
// velocity classifies as slow.
package speed

import (
	"math"
	"time"
)

// Strategy is the loading behavior a classified scroll speed implies.
type Strategy int

const (
	// StrategyImmediate: slow browsing, load predicted items with no defer.
	StrategyImmediate Strategy = iota
	// StrategyMaintain: moderate speed, half-and-half.
	StrategyMaintain
	// StrategyDefer: fast scroll, only load what's visible, debounced.
	StrategyDefer
)

func (s Strategy) String() string {
	switch s {
	case StrategyImmediate:
		return "immediate"
	case StrategyMaintain:
		return "maintain"
	case StrategyDefer:
		return "defer"
	default:
		return "unknown"
	}
}

// Thresholds configures the fast/slow classification boundary, in cells per
// millisecond.
type Thresholds struct {
	Fast float64
	Slow float64
}

// DefaultThresholds are reasonable terminal-scroll defaults: a handful of
// rows per millisecond under momentum scrolling counts as "fast".
var DefaultThresholds = Thresholds{Fast: 1.5, Slow: 0.2}

const (
	defaultAlpha             = 0.85
	defaultDecelerationFactor = 0.5
	maxSamples               = 20
)

type sample struct {
	delta int
	dt    time.Duration
	at    time.Time
}

// Output is what Tracker hands back to the viewport after each update.
type Output struct {
	Strategy         Strategy
	PrefetchCount    int
	DeferTimeoutMs   int
}

// Tracker maintains smoothed velocity over a bounded sample ring.
type Tracker struct {
	thresholds        Thresholds
	alpha             float64
	decelerationFactor float64
	viewportCapacity  int

	velocity     float64
	prevVelocity float64
	direction    int // -1, 0, +1
	accelerating bool
	samples      []sample
}

// New creates a Tracker. viewportCapacity is the number of items visible at
// once, used as the fast-scroll prefetch count.
func New(thresholds Thresholds, viewportCapacity int) *Tracker {
	return &Tracker{
		thresholds:         thresholds,
		alpha:              defaultAlpha,
		decelerationFactor: defaultDecelerationFactor,
		viewportCapacity:   viewportCapacity,
	}
}

// Update feeds a new scroll delta observed over dt and returns the updated
// classification. dt is floored to 1ms to avoid division by zero (spec
// §4.2: "max(Δt, 1)").
func (t *Tracker) Update(delta int, dt time.Duration, now time.Time) Output {
	dtMs := dt.Milliseconds()
	if dtMs < 1 {
		dtMs = 1
	}

	instant := math.Abs(float64(delta)) / float64(dtMs)

	t.prevVelocity = t.velocity
	t.velocity = t.alpha*t.prevVelocity + (1-t.alpha)*instant
	t.accelerating = t.velocity > t.prevVelocity

	newDirection := sign(delta)
	if newDirection != 0 {
		t.direction = newDirection
	}

	t.samples = append(t.samples, sample{delta: delta, dt: dt, at: now})
	if len(t.samples) > maxSamples {
		t.samples = t.samples[len(t.samples)-maxSamples:]
	}

	return t.classify()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func (t *Tracker) classify() Output {
	v := t.velocity
	switch {
	case v > t.thresholds.Fast:
		return Output{
			Strategy:       StrategyDefer,
			PrefetchCount:  t.viewportCapacity,
			DeferTimeoutMs: 150,
		}
	case v < t.thresholds.Slow:
		return Output{
			Strategy:       StrategyImmediate,
			PrefetchCount:  t.predictedItems(),
			DeferTimeoutMs: 0,
		}
	default:
		return Output{
			Strategy:       StrategyMaintain,
			PrefetchCount:  (t.viewportCapacity + t.predictedItems()) / 2,
			DeferTimeoutMs: 0,
		}
	}
}

// predictedItems integrates momentum assuming exponential decay with
// factor alpha: items = v / decelerationFactor.
func (t *Tracker) predictedItems() int {
	if t.decelerationFactor <= 0 {
		return t.viewportCapacity
	}
	n := int(t.velocity / t.decelerationFactor)
	if n < t.viewportCapacity {
		n = t.viewportCapacity
	}
	return n
}

// TimeToSlow returns the predicted time, assuming exponential decay at
// factor alpha, until velocity decays to the Slow threshold.
func (t *Tracker) TimeToSlow() time.Duration {
	if t.velocity <= t.thresholds.Slow || t.velocity <= 0 {
		return 0
	}
	ratio := t.thresholds.Slow / t.velocity
	ms := math.Log(ratio) / math.Log(t.alpha)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Velocity returns the current smoothed velocity.
func (t *Tracker) Velocity() float64 { return t.velocity }

// Direction returns -1, 0, or +1 for the last non-zero delta's sign.
func (t *Tracker) Direction() int { return t.direction }

// IsAccelerating reports whether the latest update increased velocity.
func (t *Tracker) IsAccelerating() bool { return t.accelerating }

// SignificantDirectionChange reports whether newDelta both flips the
// tracked direction and exceeds the Slow threshold (spec §4.2: gates
// prefetch-direction inversion so tiny jitter doesn't thrash prefetching).
func (t *Tracker) SignificantDirectionChange(newDelta int) bool {
	nd := sign(newDelta)
	if nd == 0 || t.direction == 0 {
		return false
	}
	return nd != t.direction && t.velocity > t.thresholds.Slow
}

// Reset clears all tracked state, e.g. on pagination-strategy change.
func (t *Tracker) Reset() {
	t.velocity = 0
	t.prevVelocity = 0
	t.direction = 0
	t.accelerating = false
	t.samples = nil
}

// Package pool implements the Element Pool: acquisition, release, capacity
// enforcement, idle cleanup, and type segregation for recyclable render
// cells (spec §4.3). A "DOM node" in the original browser spec becomes a
// Cell: a reusable struct holding a cached rendered string plus
// pool-tracking metadata.
package pool

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Cell is a recyclable unit of rendered output. Content, Width and Height
// are reset on Release; CreatedAt/LastUsedAt/UseCount/Type are
// pool-tracking fields that survive resets.
type Cell struct {
	ID        string
	Type      string
	Content   string
	Width     int
	Height    int
	Attrs     map[string]string
	CreatedAt time.Time
	LastUsedAt time.Time
	UseCount  int
}

func newCell(elementType string, now time.Time) *Cell {
	return &Cell{
		ID:         uuid.NewString(),
		Type:       elementType,
		Attrs:      make(map[string]string),
		CreatedAt:  now,
		LastUsedAt: now,
	}
}

func (c *Cell) reset() {
	c.Content = ""
	c.Width = 0
	c.Height = 0
	for k := range c.Attrs {
		delete(c.Attrs, k)
	}
}

// SelectionPolicy governs which idle cell Acquire prefers.
type SelectionPolicy int

const (
	SelectFIFO SelectionPolicy = iota
	SelectLRU
	SelectSizeBased
)

// ReusePolicy governs which sub-pool Release returns a cell to.
type ReusePolicy int

const (
	ReuseSameType ReusePolicy = iota
	ReuseAnyType
	ReuseStrict
)

// Config configures a Pool at construction. MaxPoolSize must be positive
// and MinPoolSize must lie in [0, MaxPoolSize], else New returns a
// configuration error (spec §7: "non-positive pool sizes" fails fast).
type Config struct {
	MaxPoolSize     int
	MinPoolSize     int
	Selection       SelectionPolicy
	Reuse           ReusePolicy
	CleanupInterval time.Duration
	CleanupThreshold time.Duration
	Enabled         bool
}

// Stats mirrors spec §4.3's reporting requirements.
type Stats struct {
	TotalCreated  int
	TotalRecycled int
	CurrentSize   int
	Capacity      int
}

func (s Stats) HitRate() float64 {
	total := s.TotalCreated + s.TotalRecycled
	if total == 0 {
		return 0
	}
	return float64(s.TotalRecycled) / float64(total)
}

func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.CurrentSize) / float64(s.Capacity)
}

// Pool is the bounded sequence of recyclable cells plus per-type sub-pools.
type Pool struct {
	mu     sync.Mutex
	cfg    Config
	idle   map[string][]*Cell // keyed by elementType; "" is the shared bucket
	stats  Stats

	metrics *metrics
}

// New validates cfg and constructs a Pool.
func New(cfg Config) (*Pool, error) {
	if cfg.MaxPoolSize <= 0 {
		return nil, errConfig("maxPoolSize must be positive")
	}
	if cfg.MinPoolSize < 0 || cfg.MinPoolSize > cfg.MaxPoolSize {
		return nil, errConfig("minPoolSize must be within [0, maxPoolSize]")
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 30 * time.Second
	}
	if cfg.CleanupThreshold <= 0 {
		cfg.CleanupThreshold = 60 * time.Second
	}
	return &Pool{
		cfg:     cfg,
		idle:    make(map[string][]*Cell),
		stats:   Stats{Capacity: cfg.MaxPoolSize},
		metrics: newMetrics(),
	}, nil
}

type configError struct{ msg string }

func (e *configError) Error() string { return "pool: " + e.msg }
func errConfig(msg string) error     { return &configError{msg} }

// Acquire returns a reset cell, preferring a recycled one over creating a
// new one. Returns nil only when the pool is at capacity and disabled.
func (p *Pool) Acquire(elementType string) *Cell {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	if c := p.takeIdle(elementType); c != nil {
		c.reset()
		c.LastUsedAt = now
		c.UseCount++
		p.stats.TotalRecycled++
		p.metrics.recycled.Inc()
		return c
	}

	if p.stats.CurrentSize >= p.cfg.MaxPoolSize {
		if !p.cfg.Enabled {
			return nil
		}
		// Over capacity but enabled: create anyway per spec §4.3 failure
		// semantics ("acquire may create when the pool is empty and under
		// maxPoolSize; returns null only if capacity reached AND
		// enabled=false" — here capacity is reached but Enabled permits
		// an unbounded burst rather than stalling the renderer).
	}

	c := newCell(elementType, now)
	c.UseCount = 1
	p.stats.TotalCreated++
	p.stats.CurrentSize++
	p.metrics.created.Inc()
	p.metrics.size.Set(float64(p.stats.CurrentSize))
	return c
}

func (p *Pool) takeIdle(elementType string) *Cell {
	bucket := p.bucketFor(elementType, true)
	if len(p.idle[bucket]) == 0 {
		if p.cfg.Reuse == ReuseAnyType {
			return p.takeFromAnyBucket()
		}
		return nil
	}

	idx := p.selectIndex(p.idle[bucket])
	c := p.idle[bucket][idx]
	p.idle[bucket] = append(p.idle[bucket][:idx], p.idle[bucket][idx+1:]...)
	return c
}

func (p *Pool) takeFromAnyBucket() *Cell {
	for bucket, cells := range p.idle {
		if len(cells) == 0 {
			continue
		}
		idx := p.selectIndex(cells)
		c := cells[idx]
		p.idle[bucket] = append(cells[:idx], cells[idx+1:]...)
		return c
	}
	return nil
}

func (p *Pool) selectIndex(cells []*Cell) int {
	switch p.cfg.Selection {
	case SelectLRU:
		best := 0
		for i, c := range cells {
			if c.LastUsedAt.Before(cells[best].LastUsedAt) {
				best = i
			}
		}
		return best
	case SelectSizeBased:
		best := 0
		for i, c := range cells {
			if c.Width*c.Height < cells[best].Width*cells[best].Height {
				best = i
			}
		}
		return best
	default: // SelectFIFO
		return 0
	}
}

func (p *Pool) bucketFor(elementType string, forAcquire bool) string {
	if p.cfg.Reuse == ReuseStrict || forAcquire {
		return elementType
	}
	return ""
}

// Release resets the cell and returns it to the appropriate sub-pool,
// unless that sub-pool is at capacity, in which case the cell is destroyed
// instead. A type-segregated sub-pool holds at most maxPoolSize/4 (at least
// 1) cells; the shared "" bucket holds up to maxPoolSize.
func (p *Pool) Release(c *Cell) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	c.reset()
	c.LastUsedAt = time.Now()

	bucket := p.releaseBucket(c.Type)
	subCapacity := p.cfg.MaxPoolSize
	if bucket != "" {
		// Type-segregated sub-pool: cap it to a quarter of the overall
		// capacity so one element type can't monopolize the pool.
		subCapacity = p.cfg.MaxPoolSize / 4
		if subCapacity < 1 {
			subCapacity = 1
		}
	}
	if len(p.idle[bucket]) >= subCapacity {
		p.stats.CurrentSize--
		p.metrics.size.Set(float64(p.stats.CurrentSize))
		return // destroyed: dropped, not re-added to any bucket.
	}
	p.idle[bucket] = append(p.idle[bucket], c)
}

func (p *Pool) releaseBucket(elementType string) string {
	switch p.cfg.Reuse {
	case ReuseStrict, ReuseSameType:
		return elementType
	default: // ReuseAnyType
		return ""
	}
}

// Clear empties every sub-pool and resets CurrentSize to 0; TotalCreated
// and TotalRecycled are kept.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = make(map[string][]*Cell)
	p.stats.CurrentSize = 0
	p.metrics.size.Set(0)
}

// Size returns the number of cells currently tracked by the pool
// (idle + presumed in-use, per TotalCreated/TotalRecycled bookkeeping).
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.CurrentSize
}

// Capacity returns the configured maximum pool size.
func (p *Pool) Capacity() int { return p.cfg.MaxPoolSize }

// Stats returns a snapshot of pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Optimize trims idle cells toward 80% capacity, oldest first.
func (p *Pool) Optimize() {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := int(float64(p.cfg.MaxPoolSize) * 0.8)
	for p.stats.CurrentSize > target {
		if !p.evictOldest() {
			break
		}
	}
}

func (p *Pool) evictOldest() bool {
	var oldestBucket string
	var oldestIdx = -1
	var oldestTime time.Time

	for bucket, cells := range p.idle {
		for i, c := range cells {
			if oldestIdx == -1 || c.CreatedAt.Before(oldestTime) {
				oldestBucket, oldestIdx, oldestTime = bucket, i, c.CreatedAt
			}
		}
	}
	if oldestIdx == -1 {
		return false
	}
	if p.stats.CurrentSize <= p.cfg.MinPoolSize {
		return false
	}
	cells := p.idle[oldestBucket]
	p.idle[oldestBucket] = append(cells[:oldestIdx], cells[oldestIdx+1:]...)
	p.stats.CurrentSize--
	p.metrics.size.Set(float64(p.stats.CurrentSize))
	return true
}

// Resize changes the maximum capacity, running Optimize if the new
// capacity is smaller than the current size.
func (p *Pool) Resize(newCap int) {
	p.mu.Lock()
	p.cfg.MaxPoolSize = newCap
	p.stats.Capacity = newCap
	p.mu.Unlock()
	p.Optimize()
}

// Cleanup removes idle cells whose LastUsedAt age exceeds
// cfg.CleanupThreshold, never reducing below MinPoolSize. Intended to be
// called periodically (every cfg.CleanupInterval) by the owner.
func (p *Pool) Cleanup(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for bucket, cells := range p.idle {
		kept := cells[:0]
		for _, c := range cells {
			age := now.Sub(c.LastUsedAt)
			if age > p.cfg.CleanupThreshold && p.stats.CurrentSize > p.cfg.MinPoolSize {
				p.stats.CurrentSize--
				continue
			}
			kept = append(kept, c)
		}
		p.idle[bucket] = kept
	}
	p.metrics.size.Set(float64(p.stats.CurrentSize))
}

// Collectors exposes the pool's Prometheus collectors so a caller can
// register them once (spec's ambient metrics stack; not a spec.md feature
// in its own right).
func (p *Pool) Collectors() []prometheus.Collector {
	return p.metrics.collectors()
}

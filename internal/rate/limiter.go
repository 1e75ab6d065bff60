package rate

import (
	"context"
	"math"
	"sync"
	"time"
)

// pollInterval is how often Wait rechecks a drained bucket.
const pollInterval = 50 * time.Millisecond

// Config defines rate limiting parameters for an outbound call class.
type Config struct {
	RequestsPerSecond int
	Burst             int
	// Cooldown, when positive, denies all calls for this long after a
	// bucket runs dry. Upstream throttles harder than our steady rate,
	// so backing off after a denial avoids a 429 storm.
	Cooldown time.Duration
}

// Limiter is a token bucket with an optional post-denial cooldown.
type Limiter struct {
	mu        sync.Mutex
	tokens    float64
	burst     float64
	rate      float64
	last      time.Time
	cooldown  time.Duration
	lastBlock time.Time
}

// New creates a limiter with a full bucket.
func New(cfg Config) *Limiter {
	return &Limiter{
		tokens:   float64(cfg.Burst),
		burst:    float64(cfg.Burst),
		rate:     float64(cfg.RequestsPerSecond),
		last:     time.Now(),
		cooldown: cfg.Cooldown,
	}
}

// Allow reports whether a call may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.coolingDown(now) {
		return false
	}

	l.refill(now)
	if l.tokens >= 1 {
		l.tokens--
		return true
	}

	l.lastBlock = now
	return false
}

// coolingDown holds while a recent denial is inside the cooldown window.
// lastBlock is not refreshed here so a busy caller cannot extend the
// window indefinitely.
func (l *Limiter) coolingDown(now time.Time) bool {
	return l.cooldown > 0 && !l.lastBlock.IsZero() && now.Sub(l.lastBlock) < l.cooldown
}

func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	l.tokens = math.Min(l.burst, l.tokens+elapsed*l.rate)
}

// Wait blocks until a token becomes available or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Manager holds per-key limiters. Keys separate call classes so that, for
// example, auth traffic cannot starve content fetches.
type Manager struct {
	mu       sync.RWMutex
	buckets  map[string]*Limiter
	defaults Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		buckets:  make(map[string]*Limiter),
		defaults: defaults,
	}
}

// GetLimiter returns the limiter for key, creating it on first use.
func (m *Manager) GetLimiter(key string) *Limiter {
	m.mu.RLock()
	lim, ok := m.buckets[key]
	m.mu.RUnlock()
	if ok {
		return lim
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lim, ok := m.buckets[key]; ok {
		return lim
	}
	lim = New(m.defaults)
	m.buckets[key] = lim
	return lim
}

// Wait ensures rate limit compliance for a given key.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.GetLimiter(key).Wait(ctx)
}

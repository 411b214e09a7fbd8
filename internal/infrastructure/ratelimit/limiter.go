// Package ratelimit provides per-key token buckets on golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config describes a token bucket: Capacity tokens, refilled at
// RefillTokens per RefillInterval.
type Config struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	IdleTTL        time.Duration // buckets unused this long are evicted
}

// DefaultConfig is 10 tokens, refilled at 10 per hour
func DefaultConfig() Config {
	return Config{
		Capacity:       10,
		RefillTokens:   10,
		RefillInterval: time.Hour,
		IdleTTL:        2 * time.Hour,
	}
}

// Decision is the outcome of consuming one token
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetIn is how long until the bucket is full again
	ResetIn time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New creates a limiter. Zero fields of cfg fall back to DefaultConfig.
func New(cfg Config, logger *zap.Logger) *Limiter {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.RefillTokens <= 0 {
		cfg.RefillTokens = def.RefillTokens
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = def.RefillInterval
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}

	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillTokens)),
		burst:   cfg.Capacity,
		idleTTL: cfg.IdleTTL,
		now:     time.Now,
		logger:  logger.Named("ratelimit"),
		stop:    make(chan struct{}),
	}
}

// Decide consumes one token from key's bucket
func (l *Limiter) Decide(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	return Decision{
		Allowed:   allowed,
		Limit:     l.burst,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetIn:   l.timeToFull(tokens),
	}
}

func (l *Limiter) timeToFull(tokens float64) time.Duration {
	missing := float64(l.burst) - tokens
	if missing <= 0 || l.limit <= 0 {
		return 0
	}
	return time.Duration(missing / float64(l.limit) * float64(time.Second))
}

// Evict removes buckets that have been idle for longer than the idle TTL
// and have refilled completely, and returns how many were removed. A bucket
// that is still draining is kept whatever its age, since a recreated one
// would start full.
func (l *Limiter) Evict() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.idleTTL)
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) && b.limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Start runs periodic eviction until ctx is done or Stop is called
func (l *Limiter) Start(ctx context.Context, interval time.Duration) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stop:
				return
			case <-ticker.C:
				if n := l.Evict(); n > 0 {
					l.logger.Debug("evicted idle rate limit buckets", zap.Int("count", n))
				}
			}
		}
	}()
}

// Stop ends the eviction loop. Safe to call multiple times.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	l.wg.Wait()
}

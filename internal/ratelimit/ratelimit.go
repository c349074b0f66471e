// Package ratelimit provides a token-bucket limiter, adapted from the
// teacher's DoS-prevention limiter and repurposed here to keep
// SingleInstaller's registry/fetch calls polite to upstream hosts —
// the spec's concurrency cap (§4.4) bounds in-flight workers, but a
// limiter additionally smooths the request rate within that cap.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimitExceeded is returned by TryAcquire when no token is
// available and the caller asked not to wait.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Config configures a token-bucket Limiter.
type Config struct {
	// Rate is the number of tokens added per Interval.
	Rate float64
	// Burst is the bucket's maximum token capacity.
	Burst int
	// Interval is the duration between token additions.
	Interval time.Duration
}

// Limiter is a simple token-bucket rate limiter safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// New creates a Limiter starting with a full bucket.
func New(cfg Config) *Limiter {
	rate := cfg.Rate
	if cfg.Interval > 0 {
		rate = cfg.Rate / cfg.Interval.Seconds()
	}
	return &Limiter{
		tokens:     float64(cfg.Burst),
		burst:      float64(cfg.Burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.lastRefill = now
	l.tokens += elapsed * l.refillRate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
}

// TryAcquire takes one token if immediately available, else returns
// ErrRateLimitExceeded without blocking.
func (l *Limiter) TryAcquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens < 1 {
		return ErrRateLimitExceeded
	}
	l.tokens--
	return nil
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := l.TryAcquire(); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

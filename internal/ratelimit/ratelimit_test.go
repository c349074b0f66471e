package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTryAcquireExhaustsBurst(t *testing.T) {
	l := New(Config{Rate: 1, Interval: time.Second, Burst: 2})

	if err := l.TryAcquire(); err != nil {
		t.Fatalf("expected first acquire to succeed: %v", err)
	}
	if err := l.TryAcquire(); err != nil {
		t.Fatalf("expected second acquire to succeed: %v", err)
	}
	if err := l.TryAcquire(); err != ErrRateLimitExceeded {
		t.Fatalf("expected third acquire to be rate limited, got %v", err)
	}
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	l := New(Config{Rate: 0, Interval: time.Second, Burst: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected Wait to return context error when no tokens ever refill")
	}
}

package backtest

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound provider calls. Token bucket with burst 1: the first
// acquire passes immediately, every later one is spaced by the configured
// delay. The explicit Acquire suspension point keeps the throttling contract
// independent of the sequential batch loop.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter creates a limiter with one call per delay interval.
func NewLimiter(delay time.Duration) *Limiter {
	if delay <= 0 {
		delay = time.Second
	}
	return &Limiter{rl: rate.NewLimiter(rate.Every(delay), 1)}
}

// Acquire blocks until the next remote call may be issued, or until the
// context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

package fetcher

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy controls how many times a page is requested and how long to wait in between
type RetryPolicy struct {
	MaxAttempts   int
	BackoffBase   time.Duration
	BackoffJitter time.Duration
	PacingMin     time.Duration
	PacingMax     time.Duration
}

// DefaultRetryPolicy returns 3 attempts, 2^n second backoff with up to 1s jitter,
// and a 1-3s pacing delay after a successful fetch.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BackoffBase:   time.Second,
		BackoffJitter: time.Second,
		PacingMin:     time.Second,
		PacingMax:     3 * time.Second,
	}
}

// normalized fills unusable fields with defaults
func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.BackoffBase < 0 {
		p.BackoffBase = 0
	}
	if p.BackoffJitter < 0 {
		p.BackoffJitter = 0
	}
	if p.PacingMin < 0 {
		p.PacingMin = 0
	}
	if p.PacingMax < p.PacingMin {
		p.PacingMax = p.PacingMin
	}
	return p
}

// Backoff returns the delay after the given zero-based failed attempt:
// BackoffBase * 2^attempt plus a jitter in [0, BackoffJitter).
func (p RetryPolicy) Backoff(attempt int, r Random) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := p.BackoffBase * time.Duration(1<<uint(attempt))
	if p.BackoffJitter > 0 {
		delay += time.Duration(r.Float64() * float64(p.BackoffJitter))
	}
	return delay
}

// Pacing returns a delay uniform in [PacingMin, PacingMax]
func (p RetryPolicy) Pacing(r Random) time.Duration {
	spread := p.PacingMax - p.PacingMin
	if spread <= 0 {
		return p.PacingMin
	}
	return p.PacingMin + time.Duration(r.Float64()*float64(spread))
}

// Random is the source of non-determinism used for header rotation and jitter
type Random interface {
	Intn(n int) int
	Float64() float64
}

// globalRandom uses the concurrency-safe top-level math/rand functions
type globalRandom struct{}

func (globalRandom) Intn(n int) int   { return rand.Intn(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext is the default Sleeper
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

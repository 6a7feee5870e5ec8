package retrypolicy

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"sahayak-be/pkg/apperror"
)

// Policy is an injectable retry and circuit-breaker configuration for calls
// to external capabilities. Tests substitute NoDelay to run deterministic,
// wall-clock-free retries.
type Policy struct {
	// MaxAttempts bounds tries per call, the first included.
	MaxAttempts int

	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64

	// BreakerThreshold trips the circuit after this many consecutive
	// exhausted calls; 0 disables the breaker.
	BreakerThreshold int

	// BreakerCooldown is how long a tripped breaker rejects calls before
	// allowing a probe.
	BreakerCooldown time.Duration

	// NoDelay skips all sleeps.
	NoDelay bool
}

// Default matches the turn budget: three attempts with exponential backoff.
func Default() Policy {
	return Policy{
		MaxAttempts:      3,
		InitialInterval:  200 * time.Millisecond,
		MaxInterval:      2 * time.Second,
		Multiplier:       2.0,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// NoDelay is Default without sleeps, for tests.
func NoDelay() Policy {
	p := Default()
	p.NoDelay = true
	return p
}

// Runner executes operations under one policy, tracking breaker state across
// calls. Safe for concurrent use.
type Runner struct {
	policy Policy

	mu          sync.Mutex
	consecutive int
	trippedAt   time.Time
}

func NewRunner(policy Policy) *Runner {
	return &Runner{policy: policy}
}

// Do runs op, retrying retryable failures per the policy. Non-retryable
// errors (validation, not-found, expired, ambiguous) return immediately.
// A tripped breaker rejects the call with a transient error without running
// op at all.
func (r *Runner) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := r.checkBreaker(); err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.Multiplier = r.policy.Multiplier
	if r.policy.NoDelay {
		b.InitialInterval = 0
		b.MaxInterval = 0
	}

	attempts := r.policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := op(ctx); err != nil {
			if !apperror.Retryable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(attempts)))

	r.record(err)
	return err
}

func (r *Runner) checkBreaker() error {
	if r.policy.BreakerThreshold <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consecutive < r.policy.BreakerThreshold {
		return nil
	}
	if time.Since(r.trippedAt) >= r.policy.BreakerCooldown {
		// Allow one probe; a success resets, a failure re-trips.
		r.consecutive = r.policy.BreakerThreshold - 1
		return nil
	}
	return apperror.New(apperror.KindTransient, "circuit breaker open")
}

func (r *Runner) record(err error) {
	if r.policy.BreakerThreshold <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil || !apperror.Retryable(err) {
		r.consecutive = 0
		return
	}
	r.consecutive++
	if r.consecutive == r.policy.BreakerThreshold {
		r.trippedAt = time.Now()
	}
}

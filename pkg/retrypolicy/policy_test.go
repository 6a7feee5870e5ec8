package retrypolicy

import (
	"context"
	"testing"
	"time"

	"sahayak-be/pkg/apperror"
)

func TestDoRetriesTransientFailures(t *testing.T) {
	r := NewRunner(NoDelay())
	calls := 0

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return apperror.New(apperror.KindTransient, "flaky")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	r := NewRunner(NoDelay())
	calls := 0

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return apperror.New(apperror.KindTransient, "down")
	})

	if err == nil {
		t.Fatal("Do() should fail after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (MaxAttempts)", calls)
	}
}

func TestDoDoesNotRetryPermanentFailures(t *testing.T) {
	r := NewRunner(NoDelay())
	calls := 0

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return apperror.New(apperror.KindValidation, "bad record")
	})

	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry)", calls)
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	p := NoDelay()
	p.BreakerThreshold = 2
	p.BreakerCooldown = time.Hour
	r := NewRunner(p)

	fail := func(context.Context) error {
		return apperror.New(apperror.KindTransient, "down")
	}

	// Two exhausted calls trip the breaker.
	_ = r.Do(context.Background(), fail)
	_ = r.Do(context.Background(), fail)

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	if err == nil {
		t.Fatal("tripped breaker should reject the call")
	}
	if !apperror.Is(err, apperror.KindTransient) {
		t.Fatalf("breaker error = %v, want transient", err)
	}
	if calls != 0 {
		t.Fatalf("op ran %d times behind an open breaker", calls)
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	p := NoDelay()
	p.BreakerThreshold = 2
	p.BreakerCooldown = time.Hour
	r := NewRunner(p)

	_ = r.Do(context.Background(), func(context.Context) error {
		return apperror.New(apperror.KindTransient, "down")
	})
	// A success clears the consecutive-failure count.
	if err := r.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	_ = r.Do(context.Background(), func(context.Context) error {
		return apperror.New(apperror.KindTransient, "down")
	})

	// Breaker must still be closed: only one consecutive failure.
	ran := false
	_ = r.Do(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("breaker tripped despite an intervening success")
	}
}

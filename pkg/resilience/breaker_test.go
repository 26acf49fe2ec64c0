package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerLifecycle(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("redis", BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Second})
	b.now = func() time.Time { return clock }

	down := errors.New("down")
	fail := func() error { return down }
	ok := func() error { return nil }

	if err := b.Do(fail); !errors.Is(err, down) || b.State() != StateClosed {
		t.Fatalf("first failure: err=%v state=%s", err, b.State())
	}
	b.Do(fail)
	if b.State() != StateOpen {
		t.Fatalf("state after threshold = %s", b.State())
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("open circuit: err=%v called=%v", err, called)
	}

	clock = clock.Add(time.Second)
	if err := b.Do(fail); !errors.Is(err, down) || b.State() != StateOpen {
		t.Errorf("failed probe: err=%v state=%s", err, b.State())
	}

	clock = clock.Add(time.Second)
	if err := b.Do(ok); err != nil || b.State() != StateClosed {
		t.Errorf("successful probe: err=%v state=%s", err, b.State())
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := NewBreaker("x", BreakerConfig{FailureThreshold: 2})
	fail := func() error { return errors.New("x") }
	b.Do(fail)
	b.Do(func() error { return nil })
	b.Do(fail)
	if b.State() != StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}

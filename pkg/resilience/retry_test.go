package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fast = Policy{Attempts: 4, InitialDelay: time.Microsecond, MaxDelay: time.Millisecond}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "flaky", fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDoWrapsLastError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), "broken", fast, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != fast.Attempts {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, "cancelled", Policy{Attempts: 10, InitialDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDelayBounds(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Jitter: 0.1}.withDefaults()
	for attempt := 1; attempt <= 8; attempt++ {
		d := p.delay(attempt)
		if d < 50*time.Millisecond || d > time.Second {
			t.Errorf("delay(%d) = %v out of bounds", attempt, d)
		}
	}
	if d := (Policy{InitialDelay: time.Second, MaxDelay: time.Minute}).withDefaults().delay(3); d != 4*time.Second {
		t.Errorf("unjittered delay(3) = %v, want 4s", d)
	}
}

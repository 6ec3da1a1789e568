package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(3, 2, 30*time.Second)
	b.Now = func() time.Time { return now }

	boom := errors.New("boom")
	calls := 0
	fail := func() error { calls++; return boom }

	for i := 0; i < 3; i++ {
		if err := b.Execute(fail); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected wrapped error, got %v", i, err)
		}
	}
	if got := b.State(); got != StateOpen {
		t.Fatalf("expected open after threshold, got %s", got)
	}

	// open state rejects without invoking the function
	if err := b.Execute(fail); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("wrapped function invoked while open, calls=%d", calls)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(1, 2, 30*time.Second)
	b.Now = func() time.Time { return now }

	boom := errors.New("boom")
	if err := b.Execute(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	// timeout elapses, one trial call goes through half-open
	now = now.Add(31 * time.Second)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open after first success, got %s", b.State())
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("second success failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after success threshold, got %s", b.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(1, 2, 30*time.Second)
	b.Now = func() time.Time { return now }

	boom := errors.New("boom")
	_ = b.Execute(func() error { return boom })

	now = now.Add(31 * time.Second)
	if err := b.Execute(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected reopened, got %s", b.State())
	}

	// the open timer restarted, a call right away is rejected again
	now = now.Add(29 * time.Second)
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after reopen, got %v", err)
	}
}

func TestCircuitBreakerClosedSuccessResetsFailures(t *testing.T) {
	b := NewCircuitBreaker(2, 1, 30*time.Second)
	boom := errors.New("boom")

	_ = b.Execute(func() error { return boom })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return boom })

	if b.State() != StateClosed {
		t.Fatalf("isolated failures should not open the breaker, state=%s", b.State())
	}
}

package resilience

import (
	"errors"
	"sync"
	"time"
)

// Breaker states.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half-open"
)

// ErrCircuitOpen is returned without invoking the wrapped call while the
// breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker protects the payment provider from cascading failure.
// Closed counts consecutive failures; at FailureThreshold it opens and
// rejects everything until Timeout has elapsed, then lets a single trial
// call through half-open. SuccessThreshold consecutive successes close it
// again; any half-open failure reopens it and restarts the timer.
type CircuitBreaker struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration

	Now func() time.Time // test hook

	mu        sync.Mutex
	state     string
	failures  int
	successes int
	openedAt  time.Time
}

func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
		Now:              time.Now,
		state:            StateClosed,
	}
}

// Execute runs fn under the breaker policy. A timeout inside fn surfaces as
// an error and counts as a failure.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err == nil)
	return err
}

func (b *CircuitBreaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.Now().Sub(b.openedAt) < b.Timeout {
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.successes = 0
	}
	return nil
}

func (b *CircuitBreaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		switch b.state {
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.SuccessThreshold {
				b.state = StateClosed
				b.failures = 0
				b.successes = 0
			}
		default:
			// any closed success clears accumulated failures
			b.failures = 0
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.Now()
		b.failures = 0
		b.successes = 0
	default:
		b.failures++
		if b.failures >= b.FailureThreshold {
			b.state = StateOpen
			b.openedAt = b.Now()
		}
	}
}

// State reports the current breaker state.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

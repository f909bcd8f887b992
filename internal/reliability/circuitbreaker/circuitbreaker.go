package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute while the circuit is open
var ErrOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker fails fast once a dependency has failed repeatedly
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int
	successCount     int
	trialInFlight    bool
	openedAt         time.Time
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	now              func() time.Time
	onStateChange    func(from, to State)
}

// New opens after failureThreshold consecutive failures, waits cooldown, then
// closes again after successThreshold successful trial calls. A nil now uses time.Now.
func New(failureThreshold, successThreshold int, cooldown time.Duration, now func() time.Time) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if successThreshold < 1 {
		successThreshold = 1
	}
	if now == nil {
		now = time.Now
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		now:              now,
	}
}

// OnStateChange registers a callback for state transitions. It runs without the lock held.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs fn unless the circuit is open, and records its outcome.
// While half-open only one trial call runs at a time; others get ErrOpen.
// A context.Canceled error means the caller went away and is recorded as neither outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	trial, ok := cb.allow()
	if !ok {
		return ErrOpen
	}
	err := fn()
	switch {
	case errors.Is(err, context.Canceled):
		cb.release(trial)
	case err != nil:
		cb.recordFailure(trial)
	default:
		cb.recordSuccess(trial)
	}
	return err
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow reports whether a call may proceed and whether it holds the half-open trial slot
func (cb *CircuitBreaker) allow() (trial bool, ok bool) {
	cb.mu.Lock()
	switch cb.state {
	case StateClosed:
		cb.mu.Unlock()
		return false, true
	case StateHalfOpen:
		if cb.trialInFlight {
			cb.mu.Unlock()
			return false, false
		}
		cb.trialInFlight = true
		cb.mu.Unlock()
		return true, true
	}
	if cb.now().Sub(cb.openedAt) < cb.cooldown {
		cb.mu.Unlock()
		return false, false
	}
	notify := cb.transition(StateHalfOpen)
	cb.trialInFlight = true
	cb.mu.Unlock()
	notify()
	return true, true
}

func (cb *CircuitBreaker) release(trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if trial && cb.state == StateHalfOpen {
		cb.trialInFlight = false
	}
}

func (cb *CircuitBreaker) recordSuccess(trial bool) {
	cb.mu.Lock()
	notify := func() {}
	switch cb.state {
	case StateHalfOpen:
		if !trial {
			break
		}
		cb.trialInFlight = false
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			notify = cb.transition(StateClosed)
		}
	case StateClosed:
		cb.failureCount = 0
	}
	cb.mu.Unlock()
	notify()
}

func (cb *CircuitBreaker) recordFailure(trial bool) {
	cb.mu.Lock()
	notify := func() {}
	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			notify = cb.transition(StateOpen)
		}
	case StateHalfOpen:
		if trial {
			notify = cb.transition(StateOpen)
		}
	}
	cb.mu.Unlock()
	notify()
}

// transition must be called with mu held. The returned func fires the callback.
func (cb *CircuitBreaker) transition(to State) func() {
	from := cb.state
	cb.state = to
	cb.failureCount = 0
	cb.successCount = 0
	cb.trialInFlight = false
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	fn := cb.onStateChange
	if fn == nil || from == to {
		return func() {}
	}
	return func() { fn(from, to) }
}

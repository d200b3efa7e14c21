package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker protects an upstream provider from repeated failing calls.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int
	onStateChange    func(from, to CircuitState)

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)

	return &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// OnStateChange registers a callback invoked, with the breaker unlocked,
// after every state transition. Must be set before first use.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	b.onStateChange = fn
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()

	now := b.now()
	var transition func()
	if b.state == CircuitStateOpen {
		if now.Sub(b.openedAt) < b.openTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		transition = b.transitionTo(CircuitStateHalfOpen)
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			b.mu.Unlock()
			b.notify(transition)
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	b.mu.Unlock()
	b.notify(transition)
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()

	var transition func()
	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			transition = b.transitionTo(CircuitStateClosed)
		}
	}

	b.mu.Unlock()
	b.notify(transition)
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()

	var transition func()
	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			transition = b.transitionTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		transition = b.transitionTo(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}

	b.mu.Unlock()
	b.notify(transition)
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) >= b.openTimeout {
			return CircuitStateHalfOpen
		}
	}

	return b.state
}

// transitionTo mutates state under the lock and returns the deferred
// callback invocation, or nil when nothing changed.
func (b *CircuitBreaker) transitionTo(next CircuitState) func() {
	prev := b.state
	if prev == next {
		return nil
	}

	b.state = next
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	switch next {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}

	if b.onStateChange == nil {
		return nil
	}
	fn := b.onStateChange
	return func() { fn(prev, next) }
}

func (b *CircuitBreaker) notify(transition func()) {
	if transition != nil {
		transition()
	}
}

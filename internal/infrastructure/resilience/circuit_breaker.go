// Package resilience provides the per-adapter protection primitives the
// sync orchestrator gates every channel call behind: a consecutive-failure
// circuit breaker and a sliding-window rate limiter. Both are in-memory and
// per-process; a restart resets them to their permissive initial state.
package resilience

import (
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Breaker State
// ---------------------------------------------------------------------------

// BreakerState is the circuit breaker state machine position.
type BreakerState string

const (
	// BreakerClosed admits all requests
	BreakerClosed BreakerState = "closed"
	// BreakerOpen rejects all requests until the cool-down elapses
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen admits probe requests to test recovery
	BreakerHalfOpen BreakerState = "half_open"
)

// String returns the string representation of BreakerState
func (s BreakerState) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// CircuitBreaker
// ---------------------------------------------------------------------------

// CircuitBreaker trips open after a run of consecutive failures and stays
// open for a cool-down period. Once the cool-down elapses the next request
// is admitted as a probe (half-open); the probe's outcome either closes the
// breaker or re-opens it with a fresh cool-down.
//
// Only genuine call failures feed the breaker. Skips caused by the breaker
// itself or by the rate limiter must not be recorded.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	coolDown  time.Duration

	state        BreakerState
	failureCount int
	nextAttempt  time.Time
	lastFailure  time.Time

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker. Non-positive threshold or
// cool-down fall back to 5 failures / 5 minutes.
func NewCircuitBreaker(threshold int, coolDown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if coolDown <= 0 {
		coolDown = 5 * time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		coolDown:  coolDown,
		state:     BreakerClosed,
		now:       time.Now,
	}
}

// ShouldAllowRequest reports whether a call may proceed. When the breaker is
// open and the cool-down has elapsed it transitions to half-open and admits
// the caller as the probe.
func (b *CircuitBreaker) ShouldAllowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if !b.now().Before(b.nextAttempt) {
			b.state = BreakerHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure run and closes the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.state = BreakerClosed
}

// RecordFailure counts a failure. A half-open probe failure re-opens
// immediately; a closed breaker opens once the run reaches the threshold.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.failureCount++
	b.lastFailure = now

	if b.state == BreakerHalfOpen || b.failureCount >= b.threshold {
		b.state = BreakerOpen
		b.nextAttempt = now.Add(b.coolDown)
	}
}

// State returns the current state without side effects.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive failure run.
func (b *CircuitBreaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// LastFailureAt returns when the most recent failure was recorded.
func (b *CircuitBreaker) LastFailureAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFailure
}

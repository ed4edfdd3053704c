// Package resilience guards the remote document mirror: repeated sync
// failures open a breaker so a dead backend is probed instead of
// hammered on every debounce tick.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all calls and tracks consecutive failures.
	Closed State = iota
	// Open rejects calls until the cool-off period expires.
	Open
	// HalfOpen allows a single probe to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker opens after a run of consecutive failures and closes again
// once a probe succeeds. It suits a single periodic dependency; there
// is no rolling window to maintain.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failures int
	maxFails int
	openedAt time.Time
	openFor  time.Duration
	target   string
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewBreaker constructs a breaker that opens after maxFails
// consecutive failures and stays open for openFor.
func NewBreaker(maxFails int, openFor time.Duration) *Breaker {
	if maxFails <= 0 {
		maxFails = 3
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{state: Closed, maxFails: maxFails, openFor: openFor, now: time.Now}
}

// WithTarget sets the dependency name used in transition logs.
func (b *Breaker) WithTarget(target string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = target
	return b
}

// WithLogger configures the logger used for transition events.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = &logger
	return b
}

// WithNow overrides the clock.
func (b *Breaker) WithNow(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// Allow reports whether a call is permitted. An open breaker permits
// one call after the cool-off and moves to half-open to probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open {
		if b.now().Sub(b.openedAt) >= b.openFor {
			b.changeStateLocked(HalfOpen)
			return true
		}
		return false
	}
	return true
}

// Report records the outcome of a call.
func (b *Breaker) Report(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		if success {
			b.failures = 0
			b.changeStateLocked(Closed)
		} else {
			b.changeStateLocked(Open)
		}
		return
	}

	if success {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.maxFails {
		b.changeStateLocked(Open)
	}
}

// CurrentState returns the breaker state at the time of the call.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) changeStateLocked(next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	if next == Open {
		b.openedAt = b.now()
	}
	if b.logger != nil {
		b.logger.Warn().
			Str("target", b.target).
			Str("from", prev.String()).
			Str("to", next.String()).
			Msg("circuit breaker transition")
	}
}

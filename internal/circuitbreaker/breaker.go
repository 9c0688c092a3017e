// Package circuitbreaker implements per-module failure tracking for the
// gateway. Each module has a two-state breaker: Closed (traffic flows,
// failures accumulate, successes decay the count) and Open (traffic is
// rejected). An open circuit closes unconditionally after a fixed cooldown;
// there is no half-open probe. A module can therefore reopen to traffic
// before it has actually recovered, which trades correctness of the probe
// for availability.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/midiaexterior/gateway/internal/observability"
)

// State is a point-in-time snapshot of a breaker.
type State struct {
	Module        string
	Failures      int
	LastFailureAt *time.Time
	Open          bool
}

// Status returns "open" or "closed" for introspection payloads.
func (s State) Status() string {
	if s.Open {
		return "open"
	}
	return "closed"
}

// Breaker tracks failures for a single module. All transitions on a breaker
// are serialized by its mutex, so two concurrent failures cannot both win the
// closed-to-open transition or schedule duplicate cooldown timers.
type Breaker struct {
	module    string
	threshold int
	cooldown  time.Duration
	logger    observability.Logger

	mu            sync.Mutex
	failures      int
	lastFailureAt *time.Time
	open          bool
	cooldownTimer *time.Timer
}

// newBreaker creates a closed breaker with zero failures.
func newBreaker(module string, threshold int, cooldown time.Duration, logger observability.Logger) *Breaker {
	return &Breaker{
		module:    module,
		threshold: threshold,
		cooldown:  cooldown,
		logger:    logger,
	}
}

// RecordFailure records a failed outcome (5xx or timeout). Reaching the
// threshold opens the circuit and schedules the auto-close; any previously
// pending cooldown timer is cancelled first so at most one is ever live.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.failures++
	b.lastFailureAt = &now

	recordOutcome(b.module, "failure")

	if b.failures < b.threshold {
		return
	}

	if !b.open {
		b.open = true
		recordTransition(b.module, "closed", "open")
		b.logger.Warn("circuit opened",
			observability.String("module", b.module),
			observability.Int("failures", b.failures),
			observability.Duration("cooldown", b.cooldown),
		)
	}

	b.scheduleAutoCloseLocked()
}

// RecordSuccess records a successful outcome (any status below 500). The
// failure count decays by one, floored at zero. Successes observed while the
// circuit is open (a request already in flight when it tripped) are ignored.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	recordOutcome(b.module, "success")

	if b.open {
		return
	}

	if b.failures > 0 {
		b.failures--
	}
}

// IsOpen reports whether the circuit is open, without mutation.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// State returns a snapshot of the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	var lastFailure *time.Time
	if b.lastFailureAt != nil {
		t := *b.lastFailureAt
		lastFailure = &t
	}

	return State{
		Module:        b.module,
		Failures:      b.failures,
		LastFailureAt: lastFailure,
		Open:          b.open,
	}
}

// scheduleAutoCloseLocked cancels any pending cooldown timer and schedules a
// fresh one. Callers must hold b.mu.
func (b *Breaker) scheduleAutoCloseLocked() {
	if b.cooldownTimer != nil {
		b.cooldownTimer.Stop()
	}
	b.cooldownTimer = time.AfterFunc(b.cooldown, b.autoClose)
}

// autoClose resets the breaker to its initial state when the cooldown fires.
// The close is unconditional: no probe request is required.
func (b *Breaker) autoClose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return
	}

	b.open = false
	b.failures = 0
	b.lastFailureAt = nil
	b.cooldownTimer = nil

	recordTransition(b.module, "open", "closed")
	b.logger.Info("circuit closed after cooldown",
		observability.String("module", b.module),
	)
}

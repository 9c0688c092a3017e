package circuitbreaker

import (
	"sort"
	"sync"
	"time"

	"github.com/midiaexterior/gateway/internal/observability"
)

// Store owns the circuit state for every module the gateway has seen.
// Breakers are created lazily on first reference; LoadOrStore guarantees that
// two simultaneous first-requests to the same module observe the same breaker.
// The store is constructed once at startup and handed to the middleware,
// which is the only writer.
type Store struct {
	breakers  sync.Map
	threshold int
	cooldown  time.Duration
	logger    observability.Logger
}

// StoreOption is a functional option for configuring the store.
type StoreOption func(*Store)

// WithLogger sets the logger for the store and its breakers.
func WithLogger(logger observability.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a circuit breaker store with the given policy.
func NewStore(failureThreshold int, cooldown time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		threshold: failureThreshold,
		cooldown:  cooldown,
		logger:    observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the breaker for a module, creating it on first reference.
func (s *Store) Get(module string) *Breaker {
	if value, ok := s.breakers.Load(module); ok {
		return value.(*Breaker)
	}

	b := newBreaker(module, s.threshold, s.cooldown, s.logger)

	actual, loaded := s.breakers.LoadOrStore(module, b)
	if loaded {
		return actual.(*Breaker)
	}

	s.logger.Debug("initialized circuit state",
		observability.String("module", module),
	)

	return b
}

// IsOpen reports whether the module's circuit is open. Unseen modules are
// closed by definition and are not initialized by the query.
func (s *Store) IsOpen(module string) bool {
	if value, ok := s.breakers.Load(module); ok {
		return value.(*Breaker).IsOpen()
	}
	return false
}

// Snapshot returns the state of every initialized breaker, sorted by module
// name for stable output.
func (s *Store) Snapshot() []State {
	var states []State
	s.breakers.Range(func(_, value interface{}) bool {
		states = append(states, value.(*Breaker).State())
		return true
	})

	sort.Slice(states, func(i, j int) bool {
		return states[i].Module < states[j].Module
	})

	return states
}

// OpenCircuits returns the names of modules with open circuits, sorted.
func (s *Store) OpenCircuits() []string {
	var open []string
	s.breakers.Range(func(key, value interface{}) bool {
		if value.(*Breaker).IsOpen() {
			open = append(open, key.(string))
		}
		return true
	})

	sort.Strings(open)
	return open
}

// FailureThreshold returns the configured failure threshold.
func (s *Store) FailureThreshold() int {
	return s.threshold
}

// Cooldown returns the configured cooldown duration.
func (s *Store) Cooldown() time.Duration {
	return s.cooldown
}

package circuitbreaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAtThreshold(t *testing.T) {
	store := NewStore(3, time.Minute)
	b := store.Get("placas")

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	state := b.State()
	assert.Equal(t, 3, state.Failures)
	assert.Equal(t, "open", state.Status())
	require.NotNil(t, state.LastFailureAt)
}

func TestBreaker_SuccessDecaysFailures(t *testing.T) {
	store := NewStore(3, time.Minute)
	b := store.Get("clientes")

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, 2, b.State().Failures)

	b.RecordSuccess()
	assert.Equal(t, 1, b.State().Failures)
}

func TestBreaker_DecayFloorsAtZero(t *testing.T) {
	store := NewStore(3, time.Minute)
	b := store.Get("regioes")

	for i := 0; i < 10; i++ {
		b.RecordSuccess()
	}

	assert.Equal(t, 0, b.State().Failures)
}

func TestBreaker_FailureSuccessInterleaving(t *testing.T) {
	store := NewStore(3, time.Minute)
	b := store.Get("alugueis")

	// failure, success, failure, failure: counter goes 1, 0, 1, 2 and the
	// circuit never reaches the threshold of 3.
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	assert.False(t, b.IsOpen())
	assert.Equal(t, 2, b.State().Failures)
}

func TestBreaker_AutoClosesAfterCooldown(t *testing.T) {
	store := NewStore(1, 30*time.Millisecond)
	b := store.Get("contratos")

	b.RecordFailure()
	require.True(t, b.IsOpen())

	// The close is unconditional: no probe request, no interaction at all.
	assert.Eventually(t, func() bool {
		return !b.IsOpen()
	}, time.Second, 5*time.Millisecond)

	state := b.State()
	assert.Equal(t, 0, state.Failures)
	assert.Nil(t, state.LastFailureAt)
}

func TestBreaker_FailureWhileOpenReschedulesCooldown(t *testing.T) {
	store := NewStore(1, 60*time.Millisecond)
	b := store.Get("propostas")

	b.RecordFailure()
	require.True(t, b.IsOpen())

	// An in-flight request failing after the transition pushes the
	// auto-close out: the prior timer is cancelled, a fresh one scheduled.
	time.Sleep(40 * time.Millisecond)
	b.RecordFailure()

	time.Sleep(40 * time.Millisecond)
	assert.True(t, b.IsOpen(), "cooldown should have been rescheduled")

	assert.Eventually(t, func() bool {
		return !b.IsOpen()
	}, time.Second, 5*time.Millisecond)
}

func TestBreaker_SuccessWhileOpenIsIgnored(t *testing.T) {
	store := NewStore(2, time.Minute)
	b := store.Get("webhooks")

	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.RecordSuccess()

	assert.True(t, b.IsOpen())
	assert.Equal(t, 2, b.State().Failures)
}

func TestBreaker_ConcurrentFailuresSingleTransition(t *testing.T) {
	store := NewStore(5, time.Minute)
	b := store.Get("admin")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	// No lost updates: the counter reflects a consistent serialization of
	// all 50 outcomes.
	assert.True(t, b.IsOpen())
	assert.Equal(t, 50, b.State().Failures)
}

func TestState_Status(t *testing.T) {
	assert.Equal(t, "closed", State{}.Status())
	assert.Equal(t, "open", State{Open: true}.Status())
}

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(threshold int) (*CircuitBreaker, *fakeClock, *[]State) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     time.Second,
		OnStateChange:    func(_ string, _, to State) { transitions = append(transitions, to) },
	})
	cb.now = clock.now
	return cb, clock, &transitions
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb, _, transitions := newTestBreaker(2)
	boom := errors.New("boom")

	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []State{StateOpen}, *transitions)
}

func TestCircuitSuccessResetsFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(2)
	boom := errors.New("boom")

	cb.Execute(func() error { return boom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	cb.Execute(func() error { return boom })

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitHalfOpenProbe(t *testing.T) {
	cb, clock, transitions := newTestBreaker(1)
	boom := errors.New("boom")
	cb.Execute(func() error { return boom })
	require.Equal(t, StateOpen, cb.State())

	clock.t = clock.t.Add(time.Second)
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateOpen, cb.State())

	clock.t = clock.t.Add(time.Second)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}, *transitions)
}

func TestCircuitSingleProbe(t *testing.T) {
	cb, clock, _ := newTestBreaker(1)
	cb.Execute(func() error { return errors.New("boom") })
	clock.t = clock.t.Add(time.Second)

	err := cb.Execute(func() error {
		assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitReset(t *testing.T) {
	cb, _, _ := newTestBreaker(1)
	cb.Execute(func() error { return errors.New("boom") })
	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

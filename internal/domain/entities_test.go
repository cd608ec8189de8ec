package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatePartition(t *testing.T) {
	all := []SessionState{
		StateIdle, StateInitializing, StateReady, StateProcessing,
		StateConfirming, StateCompleted, StateFailed, StateCancelled,
	}

	// No state is both active and terminal: active states hold the payment
	// slot, terminal states can never change again.
	for _, s := range all {
		assert.False(t, s.Active() && s.Terminal(), "state %s is both active and terminal", s)
	}

	assert.True(t, StateInitializing.Active())
	assert.True(t, StateProcessing.Active())
	assert.True(t, StateConfirming.Active())

	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())

	assert.False(t, StateIdle.Active())
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateReady.Active())
	assert.False(t, StateReady.Terminal())
}

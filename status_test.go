package vklite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleMonotonic(t *testing.T) {
	var l Lifecycle
	require.Equal(t, StatusInit, l.Status())

	require.NoError(t, l.Transition(StatusCreated))
	require.NoError(t, l.Transition(StatusNeedUpdate))
	require.NoError(t, l.Transition(StatusCreated))
	require.NoError(t, l.Transition(StatusDestroyed))

	err := l.Transition(StatusCreated)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidTransition))
}

func TestLifecycleRejectsSkippingBackward(t *testing.T) {
	var l Lifecycle
	require.NoError(t, l.Transition(StatusCreated))
	require.NoError(t, l.Transition(StatusNeedDestroy))
	require.Error(t, l.Transition(StatusNeedUpdate))
	require.NoError(t, l.Transition(StatusDestroyed))
}

func TestCanTransitionSelfLoop(t *testing.T) {
	assert.True(t, CanTransition(StatusCreated, StatusCreated))
}

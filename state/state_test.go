package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_InitialState(t *testing.T) {
	m := NewMachine(Waiting)

	assert.Equal(t, Waiting, m.Current())
	assert.True(t, m.Is(Waiting))
	assert.False(t, m.Allowed(Playing), "no edges registered yet")
}

func TestMachine_ChangeStateRunsHooks(t *testing.T) {
	m := NewMachine(Waiting)
	m.AddTransition(Waiting, LetterSelection, nil)

	var calls []string
	m.OnExit(Waiting, func() { calls = append(calls, "exit waiting") })
	m.OnEnter(LetterSelection, func() {
		calls = append(calls, "enter letter_selection")
		assert.Equal(t, LetterSelection, m.Current(), "enter hooks see the new phase")
	})

	require.NoError(t, m.ChangeState(LetterSelection))
	assert.Equal(t, LetterSelection, m.Current())
	assert.Equal(t, []string{"exit waiting", "enter letter_selection"}, calls)
}

func TestMachine_UnregisteredEdge(t *testing.T) {
	m := NewMachine(Waiting)
	m.AddTransition(Waiting, LetterSelection, nil)

	err := m.ChangeState(Reviewing)
	assert.True(t, errors.Is(err, ErrTransitionNotAllowed))
	assert.Equal(t, Waiting, m.Current())
}

func TestMachine_ConditionBlocksTransition(t *testing.T) {
	m := NewMachine(Playing)
	ready := false
	m.AddTransition(Playing, Reviewing, func() bool { return ready })

	entered := false
	m.OnEnter(Reviewing, func() { entered = true })

	err := m.ChangeState(Reviewing)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	assert.Equal(t, Playing, m.Current())
	assert.False(t, entered, "OnEnter must not run for a blocked transition")

	ready = true
	require.NoError(t, m.ChangeState(Reviewing))
	assert.True(t, entered)
}

func TestPhase_Terminal(t *testing.T) {
	for _, p := range []Phase{Waiting, LetterSelection, Playing, Reviewing} {
		assert.False(t, p.Terminal(), p)
	}
	assert.True(t, Finished.Terminal())
}

package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{"form entry requests an intent", StateFormEntry, StateAwaitingIntent, true},
		{"intent proceeds to card confirmation", StateAwaitingIntent, StateAwaitingConfirmation, true},
		{"intent creation can fail", StateAwaitingIntent, StateFailed, true},
		{"confirmation proceeds to submitting", StateAwaitingConfirmation, StateSubmitting, true},
		{"declined confirmation returns to the form", StateAwaitingConfirmation, StateFormEntry, true},
		{"confirmation can fail", StateAwaitingConfirmation, StateFailed, true},
		{"submitting confirms", StateSubmitting, StateConfirmed, true},
		{"submitting can fail", StateSubmitting, StateFailed, true},
		{"failed returns to the form for retry", StateFailed, StateFormEntry, true},
		{"failed resumes submitting when the charge already captured", StateFailed, StateSubmitting, true},
		{"form entry cannot skip straight to confirmed", StateFormEntry, StateConfirmed, false},
		{"form entry cannot skip straight to submitting", StateFormEntry, StateSubmitting, false},
		{"confirmed is terminal", StateConfirmed, StateFormEntry, false},
		{"submitting cannot return to the form", StateSubmitting, StateFormEntry, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransition(t *testing.T) {
	s := New(uuid.New())
	assert.Equal(t, StateFormEntry, s.State)
	assert.False(t, s.State.IsTerminal())

	assert.NoError(t, s.Transition(StateAwaitingIntent))
	assert.NoError(t, s.Transition(StateAwaitingConfirmation))
	assert.NoError(t, s.Transition(StateSubmitting))
	assert.NoError(t, s.Transition(StateConfirmed))
	assert.True(t, s.State.IsTerminal())

	err := s.Transition(StateFormEntry)
	assert.Error(t, err)
	assert.Equal(t, StateConfirmed, s.State, "failed transition must not move the state")
}

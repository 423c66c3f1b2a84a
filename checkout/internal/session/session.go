// Package session models a checkout attempt as an explicit state machine so
// every failure path has exactly one owning state to recover into.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khalidaziz/dukkan/pricing"
)

type State string

const (
	StateFormEntry            State = "form_entry"
	StateAwaitingIntent       State = "awaiting_intent"
	StateAwaitingConfirmation State = "awaiting_card_confirmation"
	StateSubmitting           State = "submitting"
	StateConfirmed            State = "confirmed"
	StateFailed               State = "failed"
)

func (s State) String() string { return string(s) }

func (s State) IsTerminal() bool { return s == StateConfirmed }

// transitions holds the allowed edges. Failed is recoverable two ways: an
// unpaid attempt walks back through FormEntry, while an attempt whose payment
// already captured resumes at Submitting so the processor is never touched
// again.
var transitions = map[State][]State{
	StateFormEntry:            {StateAwaitingIntent},
	StateAwaitingIntent:       {StateAwaitingConfirmation, StateFailed},
	StateAwaitingConfirmation: {StateSubmitting, StateFormEntry, StateFailed},
	StateSubmitting:           {StateConfirmed, StateFailed},
	StateFailed:               {StateFormEntry, StateSubmitting},
}

func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Session is the persisted checkout attempt. It holds the transient
// processor reference (intent id + client secret) between retries so a still
// valid intent is reused instead of accumulating abandoned ones. Paid marks
// a captured charge: once set, retries must skip the processor entirely and
// only re-submit the order.
type Session struct {
	ID            string          `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	State         State           `json:"state"`
	IntentID      string          `json:"paymentIntentId,omitempty"`
	ClientSecret  string          `json:"clientSecret,omitempty"`
	OrderID       string          `json:"orderId,omitempty"`
	AmountMinor   int64           `json:"amountMinor"`
	Paid          bool            `json:"paid,omitempty"`
	Summary       pricing.Summary `json:"summary"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func New(userId uuid.UUID) Session {
	now := time.Now()
	return Session{
		ID:        uuid.NewString(),
		UserID:    userId,
		State:     StateFormEntry,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Transition(to State) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("illegal checkout transition from %s to %s", s.State, to)
	}
	s.State = to
	s.UpdatedAt = time.Now()
	return nil
}

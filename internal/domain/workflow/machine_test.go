package workflow

import (
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, false},
		{StateInReview, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsReviewable(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, true},
		{StateInReview, true},
		{StateApproved, false},
		{StateRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsReviewable(); got != tt.expected {
				t.Errorf("State.IsReviewable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"rejected", StateRejected, true},
		{"unknown state", State("PENDING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSubmissionMachine_ForwardTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
	}{
		{"submit draft", StateDraft, TriggerSubmit, StateSubmitted},
		{"open review", StateSubmitted, TriggerStartReview, StateInReview},
		{"approve from submitted", StateSubmitted, TriggerApprove, StateApproved},
		{"reject from submitted", StateSubmitted, TriggerReject, StateRejected},
		{"approve in review", StateInReview, TriggerApprove, StateApproved},
		{"reject in review", StateInReview, TriggerReject, StateRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewSubmissionMachine(tt.from)
			if err != nil {
				t.Fatalf("NewSubmissionMachine() error = %v", err)
			}
			if !m.CanFire(tt.trigger) {
				t.Fatalf("CanFire(%s) = false, want true", tt.trigger)
			}
			if err := m.Fire(tt.trigger); err != nil {
				t.Fatalf("Fire(%s) error = %v", tt.trigger, err)
			}
			if m.State() != tt.want {
				t.Errorf("State() = %s, want %s", m.State(), tt.want)
			}
		})
	}
}

func TestSubmissionMachine_RejectedTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
	}{
		{"decision on draft", StateDraft, TriggerApprove},
		{"reject on draft", StateDraft, TriggerReject},
		{"review draft", StateDraft, TriggerStartReview},
		{"resubmit submitted", StateSubmitted, TriggerSubmit},
		{"approve approved", StateApproved, TriggerApprove},
		{"reject approved", StateApproved, TriggerReject},
		{"reopen rejected", StateRejected, TriggerStartReview},
		{"submit rejected", StateRejected, TriggerSubmit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewSubmissionMachine(tt.from)
			if err != nil {
				t.Fatalf("NewSubmissionMachine() error = %v", err)
			}
			if m.CanFire(tt.trigger) {
				t.Errorf("CanFire(%s) = true, want false", tt.trigger)
			}
			err = m.Fire(tt.trigger)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s) error = %v, want ErrInvalidTransition", tt.trigger, err)
			}
			if m.State() != tt.from {
				t.Errorf("State() = %s after failed fire, want %s", m.State(), tt.from)
			}
		})
	}
}

func TestSubmissionMachine_TerminalStatesHaveNoTriggers(t *testing.T) {
	for _, state := range []State{StateApproved, StateRejected} {
		m, err := NewSubmissionMachine(state)
		if err != nil {
			t.Fatalf("NewSubmissionMachine(%s) error = %v", state, err)
		}
		if got := m.PermittedTriggers(); len(got) != 0 {
			t.Errorf("PermittedTriggers() from %s = %v, want none", state, got)
		}
	}
}

func TestSubmissionMachine_InvalidInitialState(t *testing.T) {
	_, err := NewSubmissionMachine(State("BOGUS"))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("NewSubmissionMachine(BOGUS) error = %v, want ErrInvalidState", err)
	}
}

func TestDecisionTrigger(t *testing.T) {
	tests := []struct {
		decision string
		trigger  Trigger
		ok       bool
	}{
		{"APPROVE", TriggerApprove, true},
		{"REJECT", TriggerReject, true},
		{"approve", "", false},
		{"", "", false},
		{"MAYBE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.decision, func(t *testing.T) {
			got, ok := DecisionTrigger(tt.decision)
			if ok != tt.ok || got != tt.trigger {
				t.Errorf("DecisionTrigger(%q) = (%v, %v), want (%v, %v)", tt.decision, got, ok, tt.trigger, tt.ok)
			}
		})
	}
}

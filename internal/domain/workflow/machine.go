package workflow

import "fmt"

// StateMachine tracks a current state and validates transitions against
// a configured transition graph.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	currentState State
	transitions  map[State]map[Trigger]State
}

// State returns the current state
func (m *stateMachine) State() State {
	return m.currentState
}

// CanFire returns true if the trigger is permitted in the current state
func (m *stateMachine) CanFire(trigger Trigger) bool {
	targets, ok := m.transitions[m.currentState]
	if !ok {
		return false
	}
	_, ok = targets[trigger]
	return ok
}

// Fire executes the trigger, transitioning to the new state if allowed
func (m *stateMachine) Fire(trigger Trigger) error {
	targets, ok := m.transitions[m.currentState]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from terminal state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	to, ok := targets[trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	m.currentState = to
	return nil
}

// PermittedTriggers returns all triggers that can be fired in the current state
func (m *stateMachine) PermittedTriggers() []Trigger {
	targets, ok := m.transitions[m.currentState]
	if !ok {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(targets))
	for trigger := range targets {
		triggers = append(triggers, trigger)
	}
	return triggers
}

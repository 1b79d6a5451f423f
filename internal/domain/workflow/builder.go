package workflow

import "fmt"

// Builder builds a configured state machine. Configuration is shared;
// Build snapshots it so machines stay independent.
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates a new state machine builder
func NewBuilder() *Builder {
	return &Builder{
		transitions: make(map[State]map[Trigger]State),
	}
}

// Permit allows a trigger to transition from one state to another
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}

	targets, ok := b.transitions[from]
	if !ok {
		targets = make(map[Trigger]State)
		b.transitions[from] = targets
	}
	targets[trigger] = to

	return b
}

// Build creates a new state machine instance with the given initial state
func (b *Builder) Build(initial State) (StateMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}

	transitionsCopy := make(map[State]map[Trigger]State, len(b.transitions))
	for from, targets := range b.transitions {
		targetsCopy := make(map[Trigger]State, len(targets))
		for trigger, to := range targets {
			targetsCopy[trigger] = to
		}
		transitionsCopy[from] = targetsCopy
	}

	return &stateMachine{
		currentState: initial,
		transitions:  transitionsCopy,
	}, nil
}

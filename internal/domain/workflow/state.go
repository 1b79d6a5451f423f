package workflow

// State represents a submission lifecycle state
type State string

const (
	StateDraft     State = "DRAFT"
	StateSubmitted State = "SUBMITTED"
	StateInReview  State = "IN_REVIEW"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSubmitted: true,
	StateInReview:  true,
	StateApproved:  true,
	StateRejected:  true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// reviewableStates are the states in which a review decision is allowed
var reviewableStates = map[State]bool{
	StateSubmitted: true,
	StateInReview:  true,
}

// IsTerminal returns true if the state is terminal (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsReviewable returns true if a decision may be taken in this state
func (s State) IsReviewable() bool {
	return reviewableStates[s]
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

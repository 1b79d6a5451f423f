package workflow

// submissionBuilder holds the canonical submission lifecycle graph:
//
//	DRAFT --SUBMIT--> SUBMITTED --START_REVIEW--> IN_REVIEW
//	SUBMITTED/IN_REVIEW --APPROVE--> APPROVED (terminal)
//	SUBMITTED/IN_REVIEW --REJECT--> REJECTED (terminal)
//
// Decisions are permitted directly from SUBMITTED so a reviewer acting
// before the review-opened transition lands does not get stuck.
var submissionBuilder = NewBuilder().
	Permit(StateDraft, TriggerSubmit, StateSubmitted).
	Permit(StateSubmitted, TriggerStartReview, StateInReview).
	Permit(StateSubmitted, TriggerApprove, StateApproved).
	Permit(StateSubmitted, TriggerReject, StateRejected).
	Permit(StateInReview, TriggerApprove, StateApproved).
	Permit(StateInReview, TriggerReject, StateRejected)

// NewSubmissionMachine creates a lifecycle state machine positioned at
// the given current state.
func NewSubmissionMachine(current State) (StateMachine, error) {
	return submissionBuilder.Build(current)
}

// DecisionTrigger maps a decision string (APPROVE/REJECT) to its
// trigger. Returns false for anything else.
func DecisionTrigger(decision string) (Trigger, bool) {
	switch decision {
	case "APPROVE":
		return TriggerApprove, true
	case "REJECT":
		return TriggerReject, true
	}
	return "", false
}

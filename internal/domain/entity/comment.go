package entity

import "time"

// Decision constants for decision-tagged comments
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// Comment represents a free-text comment on a submission. A comment
// carrying a decision tag is the durable record of a review decision
// and is created in the same transaction as the status transition.
type Comment struct {
	ID           string      `json:"id"`
	SubmissionID string      `json:"submission_id"`
	AuthorID     string      `json:"author_id"`
	Body         string      `json:"body"`
	Decision     string      `json:"decision,omitempty"`
	Author       *AuthorInfo `json:"author,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsValidDecision reports whether d is APPROVE or REJECT.
func IsValidDecision(d string) bool {
	return d == DecisionApprove || d == DecisionReject
}

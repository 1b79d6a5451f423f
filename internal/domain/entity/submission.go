package entity

import "time"

// Submission represents one expense claim moving through the review
// lifecycle. Amounts are stored as cents to avoid float drift.
type Submission struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ExpenseType    string     `json:"expense_type"`
	Title          string     `json:"title,omitempty"`
	AmountCents    *int64     `json:"amount_cents,omitempty"`
	ExpenseDate    *time.Time `json:"expense_date,omitempty"`
	Status         string     `json:"status"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SubmissionDetail is a submission enriched with its evidence files,
// ordered comments and the creator's resolved display info.
type SubmissionDetail struct {
	*Submission `json:"submission"`

	Files    []*EvidenceFile `json:"files"`
	Comments []*Comment      `json:"comments"`
	Author   *AuthorInfo     `json:"author,omitempty"`
}

// AuthorInfo carries display information resolved from the identity
// provider. Best-effort: absent when the provider lookup fails.
type AuthorInfo struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

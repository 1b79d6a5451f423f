package entity

// Status constants for Submission
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusInReview  = "IN_REVIEW"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// Analysis status constants for EvidenceFile
const (
	AnalysisStatusPending   = "PENDING"
	AnalysisStatusProcessed = "PROCESSED"
	AnalysisStatusFailed    = "FAILED"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

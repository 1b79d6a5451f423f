package entity

import "time"

// Notification type tags
const (
	NotificationTypeDecision = "DECISION"
	NotificationTypeComment  = "COMMENT"
)

// Notification represents a persisted notification event emitted by the
// review workflow. Delivery is best-effort; the row is the source of
// truth for the in-app feed.
type Notification struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	UserID         string     `json:"user_id"`
	Type           string     `json:"type"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}

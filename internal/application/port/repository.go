package port

import (
	"context"

	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// OrganizationRepository defines persistence operations for Organization
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*entity.Organization, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionRepository defines persistence operations for Submission.
// Read operations are organization-scoped: a submission outside the
// given organization behaves as absent.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *entity.Submission) error

	// GetByID retrieves a submission within the organization, nil when
	// absent (or owned by another organization).
	GetByID(ctx context.Context, orgID, id string) (*entity.Submission, error)

	// ListByStatus retrieves submissions of the organization in any of
	// the given statuses, newest first, paginated.
	ListByStatus(ctx context.Context, orgID string, statuses []string, limit, offset int) ([]*entity.Submission, error)

	// ListByCreator retrieves submissions created by a user, newest first.
	ListByCreator(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Submission, error)

	// ListAll retrieves every submission of the organization, newest first.
	ListAll(ctx context.Context, orgID string, limit, offset int) ([]*entity.Submission, error)

	// UpdateStatus moves the submission status from any of fromStatuses
	// to toStatus. Returns false without error when the submission was
	// not in an eligible status, so concurrent decisions race safely.
	UpdateStatus(ctx context.Context, id string, fromStatuses []string, toStatus string) (bool, error)

	// CountByStatus returns submission counts per status for an organization.
	CountByStatus(ctx context.Context, orgID string) (map[string]int, error)
}

// FileRepository defines persistence operations for EvidenceFile
type FileRepository interface {
	Create(ctx context.Context, file *entity.EvidenceFile) error

	// GetByID retrieves an evidence file within the organization via its
	// submission, nil when absent.
	GetByID(ctx context.Context, orgID, id string) (*entity.EvidenceFile, error)

	GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.EvidenceFile, error)
	CountBySubmissionID(ctx context.Context, submissionID string) (int, error)

	// GetPendingAnalysis returns files awaiting analysis, oldest first.
	GetPendingAnalysis(ctx context.Context, limit int) ([]*entity.EvidenceFile, error)

	// SetAnalysis persists a successful analysis result.
	SetAnalysis(ctx context.Context, id, extractedText, analysis string) error

	// MarkAnalysisFailed records an analysis failure without touching
	// the analysis payload.
	MarkAnalysisFailed(ctx context.Context, id, errorMsg string) error
}

// CommentRepository defines persistence operations for Comment
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Comment, error)
	CountBySubmissionID(ctx context.Context, submissionID string) (int, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errorMsg string) error
	ListByUser(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Notification, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

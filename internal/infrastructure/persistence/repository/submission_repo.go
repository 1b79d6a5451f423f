package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SubmissionRepository implements port.SubmissionRepository
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

const submissionColumns = `id, organization_id, expense_type, title, amount_cents, expense_date, status, created_by, created_at, updated_at`

// Create creates a new submission record
func (r *SubmissionRepository) Create(ctx context.Context, sub *entity.Submission) error {
	query := `
		INSERT INTO submissions (
			id, organization_id, expense_type, title, amount_cents, expense_date,
			status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		sub.ID,
		sub.OrganizationID,
		sub.ExpenseType,
		sub.Title,
		sub.AmountCents,
		sub.ExpenseDate,
		sub.Status,
		sub.CreatedBy,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission scoped to an organization. Returns nil
// when the submission does not exist or belongs to another organization.
func (r *SubmissionRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = ? AND organization_id = ?`, submissionColumns)

	sub, err := r.scanOne(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id, orgID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return sub, nil
}

// ListByStatus retrieves submissions in any of the given statuses,
// newest first.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, orgID string, statuses []string, limit, offset int) ([]*entity.Submission, error) {
	if len(statuses) == 0 {
		return []*entity.Submission{}, nil
	}

	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		WHERE organization_id = ? AND status IN (%s)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, submissionColumns, placeholders)

	args := make([]interface{}, 0, len(statuses)+3)
	args = append(args, orgID)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, limit, offset)

	return r.list(ctx, query, args...)
}

// ListByCreator retrieves submissions created by a user, newest first.
func (r *SubmissionRepository) ListByCreator(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		WHERE organization_id = ? AND created_by = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, submissionColumns)

	return r.list(ctx, query, orgID, userID, limit, offset)
}

// ListAll retrieves every submission of the organization, newest first.
func (r *SubmissionRepository) ListAll(ctx context.Context, orgID string, limit, offset int) ([]*entity.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, submissionColumns)

	return r.list(ctx, query, orgID, limit, offset)
}

// UpdateStatus moves the status from any of fromStatuses to toStatus as
// a compare-and-set. Returns false when no row matched, which is how a
// losing concurrent decision observes the already-transitioned state.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, fromStatuses []string, toStatus string) (bool, error) {
	if len(fromStatuses) == 0 {
		return false, nil
	}

	placeholders := strings.Repeat("?, ", len(fromStatuses)-1) + "?"
	query := fmt.Sprintf(`
		UPDATE submissions SET status = ?, updated_at = ?
		WHERE id = ? AND status IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(fromStatuses)+3)
	args = append(args, toStatus, time.Now(), id)
	for _, s := range fromStatuses {
		args = append(args, s)
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update submission status",
			zap.String("id", id),
			zap.String("to_status", toStatus),
			zap.Error(err))
		return false, fmt.Errorf("failed to update submission status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected == 1, nil
}

// CountByStatus returns submission counts per status for an organization.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, orgID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM submissions WHERE organization_id = ? GROUP BY status`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, orgID)
	if err != nil {
		r.logger.Error("Failed to count submissions", zap.String("org_id", orgID), zap.Error(err))
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Submission, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]*entity.Submission, 0)
	for rows.Next() {
		sub, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SubmissionRepository) scanOne(row rowScanner) (*entity.Submission, error) {
	var sub entity.Submission
	var amountCents sql.NullInt64
	var expenseDate sql.NullTime

	err := row.Scan(
		&sub.ID,
		&sub.OrganizationID,
		&sub.ExpenseType,
		&sub.Title,
		&amountCents,
		&expenseDate,
		&sub.Status,
		&sub.CreatedBy,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	if amountCents.Valid {
		sub.AmountCents = &amountCents.Int64
	}
	if expenseDate.Valid {
		sub.ExpenseDate = &expenseDate.Time
	}

	return &sub, nil
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)

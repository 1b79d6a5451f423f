package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CommentRepository implements port.CommentRepository
type CommentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB, logger *zap.Logger) port.CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new comment record
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	query := `
		INSERT INTO comments (id, submission_id, author_id, body, decision, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		comment.ID,
		comment.SubmissionID,
		comment.AuthorID,
		comment.Body,
		comment.Decision,
		comment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create comment", zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetBySubmissionID retrieves all comments of a submission, oldest first.
func (r *CommentRepository) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Comment, error) {
	query := `
		SELECT id, submission_id, author_id, body, decision, created_at
		FROM comments
		WHERE submission_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to list comments", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*entity.Comment, 0)
	for rows.Next() {
		var comment entity.Comment

		err := rows.Scan(
			&comment.ID,
			&comment.SubmissionID,
			&comment.AuthorID,
			&comment.Body,
			&comment.Decision,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}

// CountBySubmissionID returns the number of comments on a submission.
func (r *CommentRepository) CountBySubmissionID(ctx context.Context, submissionID string) (int, error) {
	var count int
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE submission_id = ?`, submissionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

// Verify interface compliance
var _ port.CommentRepository = (*CommentRepository)(nil)

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

// FileRepository implements port.FileRepository
type FileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFileRepository creates a new evidence file repository
func NewFileRepository(db *sql.DB, logger *zap.Logger) port.FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

const fileColumns = `f.id, f.submission_id, f.kind, f.object_key, f.file_name, f.file_size, f.mime_type,
	f.extracted_text, f.analysis, f.analysis_status, f.analysis_error, f.analyzed_at, f.created_at`

// Create creates a new evidence file record
func (r *FileRepository) Create(ctx context.Context, file *entity.EvidenceFile) error {
	query := `
		INSERT INTO evidence_files (
			id, submission_id, kind, object_key, file_name, file_size, mime_type,
			extracted_text, analysis, analysis_status, analysis_error, analyzed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	if file.AnalysisStatus == "" {
		file.AnalysisStatus = entity.AnalysisStatusPending
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		file.ID,
		file.SubmissionID,
		file.Kind,
		file.ObjectKey,
		file.FileName,
		file.FileSize,
		file.MimeType,
		file.ExtractedText,
		file.Analysis,
		file.AnalysisStatus,
		file.AnalysisError,
		file.AnalyzedAt,
		file.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create evidence file", zap.Error(err))
		return fmt.Errorf("failed to create evidence file: %w", err)
	}

	return nil
}

// GetByID retrieves an evidence file scoped to an organization through
// its submission. Returns nil when absent.
func (r *FileRepository) GetByID(ctx context.Context, orgID, id string) (*entity.EvidenceFile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM evidence_files f
		JOIN submissions s ON s.id = f.submission_id
		WHERE f.id = ? AND s.organization_id = ?
	`, fileColumns)

	file, err := r.scanOne(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id, orgID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get evidence file", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get evidence file: %w", err)
	}

	return file, nil
}

// GetBySubmissionID retrieves all evidence files of a submission,
// oldest first.
func (r *FileRepository) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.EvidenceFile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM evidence_files f
		WHERE f.submission_id = ?
		ORDER BY f.created_at ASC, f.id ASC
	`, fileColumns)

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to list evidence files", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list evidence files: %w", err)
	}
	defer rows.Close()

	files := make([]*entity.EvidenceFile, 0)
	for rows.Next() {
		file, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// CountBySubmissionID returns the number of evidence files attached to
// a submission.
func (r *FileRepository) CountBySubmissionID(ctx context.Context, submissionID string) (int, error) {
	var count int
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evidence_files WHERE submission_id = ?`, submissionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evidence files: %w", err)
	}
	return count, nil
}

// GetPendingAnalysis returns files awaiting analysis, oldest first.
func (r *FileRepository) GetPendingAnalysis(ctx context.Context, limit int) ([]*entity.EvidenceFile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM evidence_files f
		WHERE f.analysis_status = ?
		ORDER BY f.created_at ASC
		LIMIT ?
	`, fileColumns)

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, entity.AnalysisStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to list pending analysis files", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending analysis files: %w", err)
	}
	defer rows.Close()

	files := make([]*entity.EvidenceFile, 0)
	for rows.Next() {
		file, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// SetAnalysis persists a successful analysis result
func (r *FileRepository) SetAnalysis(ctx context.Context, id, extractedText, analysis string) error {
	query := `
		UPDATE evidence_files
		SET extracted_text = ?, analysis = ?, analysis_status = ?, analysis_error = '', analyzed_at = ?
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		extractedText, analysis, entity.AnalysisStatusProcessed, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to set analysis", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set analysis: %w", err)
	}

	return nil
}

// MarkAnalysisFailed records an analysis failure. The analysis payload
// stays untouched.
func (r *FileRepository) MarkAnalysisFailed(ctx context.Context, id, errorMsg string) error {
	query := `
		UPDATE evidence_files
		SET analysis_status = ?, analysis_error = ?, analyzed_at = ?
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		entity.AnalysisStatusFailed, errorMsg, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark analysis failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark analysis failed: %w", err)
	}

	return nil
}

func (r *FileRepository) scanOne(row rowScanner) (*entity.EvidenceFile, error) {
	var file entity.EvidenceFile
	var analyzedAt sql.NullTime

	err := row.Scan(
		&file.ID,
		&file.SubmissionID,
		&file.Kind,
		&file.ObjectKey,
		&file.FileName,
		&file.FileSize,
		&file.MimeType,
		&file.ExtractedText,
		&file.Analysis,
		&file.AnalysisStatus,
		&file.AnalysisError,
		&analyzedAt,
		&file.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan evidence file: %w", err)
	}

	if analyzedAt.Valid {
		file.AnalyzedAt = &analyzedAt.Time
	}

	return &file, nil
}

// Verify interface compliance
var _ port.FileRepository = (*FileRepository)(nil)

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// DefaultMaxUploadSize bounds evidence uploads when no limit is configured.
const DefaultMaxUploadSize = 20 << 20 // 20 MiB

// allowedExtensions maps accepted file extensions to the content type
// stored alongside the object. The extension, not the client-declared
// MIME type, is authoritative.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IngestDocumentInput carries an uploaded evidence document.
type IngestDocumentInput struct {
	SubmissionID string
	FileName     string
	Content      []byte
	Kind         string // optional, inferred from the extension when empty
}

// DocumentService handles evidence file ingestion and retrieval. Stored
// documents are picked up by the analysis worker asynchronously.
type DocumentService interface {
	// Ingest validates, stores and registers an evidence document on a
	// DRAFT submission owned by the actor. Analysis starts later.
	Ingest(ctx context.Context, actor Actor, input IngestDocumentInput) (*entity.EvidenceFile, error)

	// PresignedURL issues a time-limited download URL for a file the
	// actor may see.
	PresignedURL(ctx context.Context, actor Actor, fileID string) (string, error)
}

type documentServiceImpl struct {
	fileRepo       port.FileRepository
	submissionRepo port.SubmissionRepository
	storage        port.ObjectStorage
	maxUploadSize  int64
	urlExpiry      time.Duration
	logger         *zap.Logger
}

// NewDocumentService creates a new DocumentService. maxUploadSize <= 0
// falls back to DefaultMaxUploadSize.
func NewDocumentService(
	fileRepo port.FileRepository,
	submissionRepo port.SubmissionRepository,
	storage port.ObjectStorage,
	maxUploadSize int64,
	logger *zap.Logger,
) DocumentService {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &documentServiceImpl{
		fileRepo:       fileRepo,
		submissionRepo: submissionRepo,
		storage:        storage,
		maxUploadSize:  maxUploadSize,
		urlExpiry:      15 * time.Minute,
		logger:         logger,
	}
}

func (s *documentServiceImpl) Ingest(ctx context.Context, actor Actor, input IngestDocumentInput) (*entity.EvidenceFile, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	if len(input.Content) == 0 {
		return nil, apperr.Validation("uploaded file is empty")
	}
	if int64(len(input.Content)) > s.maxUploadSize {
		return nil, apperr.Validation("uploaded file exceeds the %d byte limit", s.maxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(input.FileName))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, apperr.Validation("unsupported file type, expected pdf, jpg, png or webp")
	}

	kind := input.Kind
	if kind == "" {
		kind = inferKind(ext)
	}
	if !entity.IsValidFileKind(kind) {
		return nil, apperr.Validation("kind must be INVOICE, CONTRACT, RECEIPT or OTHER")
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission not found")
	}
	if sub.CreatedBy != actor.UserID {
		return nil, apperr.PermissionDenied("only the submission owner may attach files")
	}
	if sub.Status != entity.StatusDraft {
		return nil, apperr.InvalidStateTransition("files can only be attached to a DRAFT submission")
	}

	fileID := uuid.NewString()
	objectKey := fmt.Sprintf("orgs/%s/submissions/%s/%s%s", actor.OrganizationID, sub.ID, fileID, ext)

	if err := s.storage.Put(ctx, objectKey, input.Content, contentType); err != nil {
		return nil, apperr.DependencyFailure(err, "failed to store the uploaded document")
	}

	file := &entity.EvidenceFile{
		ID:             fileID,
		SubmissionID:   sub.ID,
		Kind:           kind,
		ObjectKey:      objectKey,
		FileName:       filepath.Base(input.FileName),
		FileSize:       int64(len(input.Content)),
		MimeType:       contentType,
		AnalysisStatus: entity.AnalysisStatusPending,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The object is orphaned otherwise; the row is the ownership record.
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned object",
				zap.String("object_key", objectKey),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("create evidence file: %w", err)
	}

	s.logger.Info("Evidence document ingested",
		zap.String("file_id", file.ID),
		zap.String("submission_id", sub.ID),
		zap.String("kind", file.Kind),
		zap.Int64("size", file.FileSize))

	return file, nil
}

func (s *documentServiceImpl) PresignedURL(ctx context.Context, actor Actor, fileID string) (string, error) {
	if err := actor.Validate(); err != nil {
		return "", err
	}

	file, err := s.fileRepo.GetByID(ctx, actor.OrganizationID, fileID)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", apperr.NotFound("file not found")
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, file.SubmissionID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", apperr.NotFound("file not found")
	}
	if sub.CreatedBy != actor.UserID && !actor.Role.CanReview() {
		return "", apperr.NotFound("file not found")
	}

	url, err := s.storage.PresignedGetURL(ctx, file.ObjectKey, s.urlExpiry)
	if err != nil {
		return "", apperr.DependencyFailure(err, "failed to issue download URL")
	}
	return url, nil
}

func inferKind(ext string) string {
	if ext == ".pdf" {
		return entity.FileKindInvoice
	}
	return entity.FileKindReceipt
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/domain/role"
	"github.com/clematis-labs/justify-server/internal/domain/workflow"
)

// CreateSubmissionInput carries the fields of a new draft submission.
type CreateSubmissionInput struct {
	ExpenseType string
	Title       string
	AmountCents *int64
	ExpenseDate *time.Time
}

// SubmissionService manages the submitter side of the workflow: drafts,
// handing a draft to review and reading back one's own submissions.
type SubmissionService interface {
	// Create stores a new submission in DRAFT for the acting user.
	Create(ctx context.Context, actor Actor, input CreateSubmissionInput) (*entity.Submission, error)

	// Submit hands a draft to review. Requires ownership and at least
	// one attached evidence file.
	Submit(ctx context.Context, actor Actor, submissionID string) (*entity.Submission, error)

	// Get retrieves a single submission with files, comments and author
	// info. Submitters see only their own; reviewers see any in the
	// organization.
	Get(ctx context.Context, actor Actor, submissionID string) (*entity.SubmissionDetail, error)

	// ListMine lists the acting user's submissions, newest first.
	ListMine(ctx context.Context, actor Actor, limit, offset int) ([]*entity.Submission, error)
}

type submissionServiceImpl struct {
	submissionRepo port.SubmissionRepository
	fileRepo       port.FileRepository
	orgRepo        port.OrganizationRepository
	enrich         *enricher
	logger         *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo port.SubmissionRepository,
	fileRepo port.FileRepository,
	commentRepo port.CommentRepository,
	orgRepo port.OrganizationRepository,
	provider role.Provider,
	logger *zap.Logger,
) SubmissionService {
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		fileRepo:       fileRepo,
		orgRepo:        orgRepo,
		enrich:         newEnricher(fileRepo, commentRepo, provider, logger),
		logger:         logger,
	}
}

func (s *submissionServiceImpl) Create(ctx context.Context, actor Actor, input CreateSubmissionInput) (*entity.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	input.ExpenseType = strings.TrimSpace(input.ExpenseType)
	if input.ExpenseType == "" {
		return nil, apperr.Validation("expense_type must not be empty")
	}
	if input.AmountCents != nil && *input.AmountCents < 0 {
		return nil, apperr.Validation("amount must not be negative")
	}

	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFound("organization not found")
	}

	sub := &entity.Submission{
		ID:             uuid.NewString(),
		OrganizationID: actor.OrganizationID,
		ExpenseType:    input.ExpenseType,
		Title:          strings.TrimSpace(input.Title),
		AmountCents:    input.AmountCents,
		ExpenseDate:    input.ExpenseDate,
		Status:         entity.StatusDraft,
		CreatedBy:      actor.UserID,
	}

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.logger.Info("Submission created",
		zap.String("submission_id", sub.ID),
		zap.String("organization_id", sub.OrganizationID),
		zap.String("created_by", sub.CreatedBy))

	return sub, nil
}

func (s *submissionServiceImpl) Submit(ctx context.Context, actor Actor, submissionID string) (*entity.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission not found")
	}
	if sub.CreatedBy != actor.UserID {
		return nil, apperr.PermissionDenied("only the submission owner may submit it")
	}

	machine, err := workflow.NewSubmissionMachine(workflow.State(sub.Status))
	if err != nil {
		return nil, fmt.Errorf("submission %s has invalid status %q: %w", sub.ID, sub.Status, err)
	}
	if !machine.CanFire(workflow.TriggerSubmit) {
		return nil, apperr.InvalidStateTransition("only a DRAFT submission can be submitted")
	}

	fileCount, err := s.fileRepo.CountBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if fileCount == 0 {
		return nil, apperr.Validation("a submission needs at least one evidence file before it can be submitted")
	}

	moved, err := s.submissionRepo.UpdateStatus(ctx, sub.ID,
		[]string{entity.StatusDraft}, entity.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !moved {
		return nil, apperr.InvalidStateTransition("only a DRAFT submission can be submitted")
	}

	sub.Status = entity.StatusSubmitted

	s.logger.Info("Submission handed to review",
		zap.String("submission_id", sub.ID),
		zap.Int("file_count", fileCount))

	return sub, nil
}

func (s *submissionServiceImpl) Get(ctx context.Context, actor Actor, submissionID string) (*entity.SubmissionDetail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission not found")
	}
	if sub.CreatedBy != actor.UserID && !actor.Role.CanReview() {
		// Ownership is not disclosed to unrelated submitters.
		return nil, apperr.NotFound("submission not found")
	}

	authors := make(map[string]*entity.AuthorInfo)
	return s.enrich.detail(ctx, sub, authors)
}

func (s *submissionServiceImpl) ListMine(ctx context.Context, actor Actor, limit, offset int) ([]*entity.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)
	return s.submissionRepo.ListByCreator(ctx, actor.OrganizationID, actor.UserID, limit, offset)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/domain/role"
	"github.com/clematis-labs/justify-server/internal/domain/workflow"
)

// Notifier emits best-effort notification events. Implementations must
// never fail the calling workflow; there is no error to return.
type Notifier interface {
	Notify(ctx context.Context, orgID, userID, typeTag, message string)
}

// ReviewService orchestrates the review workflow: the pending-review
// queue, decisions and comments.
type ReviewService interface {
	// ListForReview returns submissions awaiting review, newest first,
	// enriched with files, comments and author info. Listing opens
	// review: SUBMITTED submissions flip to IN_REVIEW.
	ListForReview(ctx context.Context, actor Actor, limit, offset int) ([]*entity.SubmissionDetail, error)

	// SubmitDecision approves or rejects a submission, recording the
	// justifying comment in the same transaction as the transition.
	SubmitDecision(ctx context.Context, actor Actor, submissionID, decision, commentText string) (*entity.SubmissionDetail, error)

	// AddComment adds a plain comment without changing status.
	AddComment(ctx context.Context, actor Actor, submissionID, text string) (*entity.Comment, error)
}

type reviewServiceImpl struct {
	submissionRepo port.SubmissionRepository
	commentRepo    port.CommentRepository
	txManager      port.TransactionManager
	enrich         *enricher
	notifier       Notifier
	logger         *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	submissionRepo port.SubmissionRepository,
	fileRepo port.FileRepository,
	commentRepo port.CommentRepository,
	txManager port.TransactionManager,
	provider role.Provider,
	notifier Notifier,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		submissionRepo: submissionRepo,
		commentRepo:    commentRepo,
		txManager:      txManager,
		enrich:         newEnricher(fileRepo, commentRepo, provider, logger),
		notifier:       notifier,
		logger:         logger,
	}
}

// ListForReview returns the pending-review queue for the actor's
// organization.
func (s *reviewServiceImpl) ListForReview(ctx context.Context, actor Actor, limit, offset int) ([]*entity.SubmissionDetail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.Role.CanReview() {
		return nil, apperr.PermissionDenied("reviewing requires the reviewer role or above")
	}

	limit, offset = normalizePage(limit, offset)

	subs, err := s.submissionRepo.ListByStatus(ctx, actor.OrganizationID,
		[]string{entity.StatusSubmitted, entity.StatusInReview}, limit, offset)
	if err != nil {
		return nil, err
	}

	// Opening the queue starts review. Idempotent: the CAS is a no-op
	// for submissions already IN_REVIEW or decided meanwhile.
	for _, sub := range subs {
		if sub.Status != entity.StatusSubmitted {
			continue
		}
		moved, err := s.submissionRepo.UpdateStatus(ctx, sub.ID,
			[]string{entity.StatusSubmitted}, entity.StatusInReview)
		if err != nil {
			s.logger.Warn("Failed to open review",
				zap.String("submission_id", sub.ID),
				zap.Error(err))
			continue
		}
		if moved {
			sub.Status = entity.StatusInReview
		}
	}

	authors := make(map[string]*entity.AuthorInfo)
	details := make([]*entity.SubmissionDetail, 0, len(subs))
	for _, sub := range subs {
		detail, err := s.enrich.detail(ctx, sub, authors)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return details, nil
}

// SubmitDecision transitions the submission and records the decision
// comment as one atomic unit.
func (s *reviewServiceImpl) SubmitDecision(ctx context.Context, actor Actor, submissionID, decision, commentText string) (*entity.SubmissionDetail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.Role.CanReview() {
		return nil, apperr.PermissionDenied("deciding requires the reviewer role or above")
	}

	trigger, ok := workflow.DecisionTrigger(decision)
	if !ok {
		return nil, apperr.Validation("decision must be APPROVE or REJECT")
	}
	commentText = strings.TrimSpace(commentText)
	if commentText == "" {
		return nil, apperr.Validation("a decision requires a non-empty comment")
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission not found")
	}

	machine, err := workflow.NewSubmissionMachine(workflow.State(sub.Status))
	if err != nil {
		return nil, fmt.Errorf("submission %s has invalid status %q: %w", sub.ID, sub.Status, err)
	}
	if err := machine.Fire(trigger); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return nil, apperr.InvalidStateTransition("submission is not in a reviewable state")
		}
		return nil, err
	}
	targetStatus := string(machine.State())

	comment := &entity.Comment{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		AuthorID:     actor.UserID,
		Body:         commentText,
		Decision:     decision,
	}

	// Status transition and decision comment commit together or not at
	// all. The compare-and-set also settles concurrent decisions: the
	// loser matches zero rows and rolls back.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := s.submissionRepo.UpdateStatus(txCtx, sub.ID,
			[]string{entity.StatusSubmitted, entity.StatusInReview}, targetStatus)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !moved {
			return apperr.InvalidStateTransition("submission is not in a reviewable state")
		}

		if err := s.commentRepo.Create(txCtx, comment); err != nil {
			return fmt.Errorf("create decision comment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sub.Status = targetStatus

	s.logger.Info("Decision recorded",
		zap.String("submission_id", sub.ID),
		zap.String("decision", decision),
		zap.String("decided_by", actor.UserID))

	s.notifyDetached(ctx, actor.OrganizationID, sub.CreatedBy, entity.NotificationTypeDecision,
		fmt.Sprintf("Your submission %q was %s", submissionTitle(sub), decisionPastTense(decision)))

	authors := make(map[string]*entity.AuthorInfo)
	return s.enrich.detail(ctx, sub, authors)
}

// AddComment records a plain comment on a submission.
func (s *reviewServiceImpl) AddComment(ctx context.Context, actor Actor, submissionID, text string) (*entity.Comment, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text must not be empty")
	}

	sub, err := s.submissionRepo.GetByID(ctx, actor.OrganizationID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission not found")
	}

	if !actor.Role.CanReview() && sub.CreatedBy != actor.UserID {
		return nil, apperr.PermissionDenied("commenting requires the reviewer role or submission ownership")
	}

	comment := &entity.Comment{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		AuthorID:     actor.UserID,
		Body:         text,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if sub.CreatedBy != actor.UserID {
		s.notifyDetached(ctx, actor.OrganizationID, sub.CreatedBy, entity.NotificationTypeComment,
			fmt.Sprintf("New comment on your submission %q", submissionTitle(sub)))
	}

	return comment, nil
}

// notifyDetached emits the notification outside the request lifecycle
// so a slow or failing sink can never block or fail the workflow.
func (s *reviewServiceImpl) notifyDetached(ctx context.Context, orgID, userID, typeTag, message string) {
	go s.notifier.Notify(context.WithoutCancel(ctx), orgID, userID, typeTag, message)
}

func decisionPastTense(decision string) string {
	if decision == entity.DecisionApprove {
		return "approved"
	}
	return "rejected"
}

func submissionTitle(sub *entity.Submission) string {
	if sub.Title != "" {
		return sub.Title
	}
	return sub.ExpenseType
}

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/repository"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/sqlite"
	"github.com/clematis-labs/justify-server/pkg/database"
)

// newTestDB opens a throwaway SQLite database and applies the real
// migrations, so the repositories run against the schema production
// uses.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../../../migrations"))

	return db
}

func seedOrganization(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	orgRepo := repository.NewOrganizationRepository(db, zap.NewNop())
	require.NoError(t, orgRepo.Create(context.Background(), &entity.Organization{
		ID:        id,
		Name:      "Clematis Labs",
		Subdomain: id,
	}))
}

func seedSubmission(t *testing.T, db *sql.DB, orgID, id, createdBy, status string) {
	t.Helper()
	subRepo := repository.NewSubmissionRepository(db, zap.NewNop())
	require.NoError(t, subRepo.Create(context.Background(), &entity.Submission{
		ID:             id,
		OrganizationID: orgID,
		ExpenseType:    "TRAVEL",
		Status:         status,
		CreatedBy:      createdBy,
	}))
}

func TestIntegration_SubmissionRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewSubmissionRepository(db, zap.NewNop())
	seedOrganization(t, db, "org-001")

	// Untitled draft with no amount and no date round-trips.
	amount := int64(12500)
	date := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &entity.Submission{
		ID:             "sub-001",
		OrganizationID: "org-001",
		ExpenseType:    "TRAVEL",
		Status:         entity.StatusDraft,
		CreatedBy:      "user-001",
	}))
	require.NoError(t, repo.Create(ctx, &entity.Submission{
		ID:             "sub-002",
		OrganizationID: "org-001",
		ExpenseType:    "MEALS",
		Title:          "Team dinner",
		AmountCents:    &amount,
		ExpenseDate:    &date,
		Status:         entity.StatusSubmitted,
		CreatedBy:      "user-002",
	}))

	got, err := repo.GetByID(ctx, "org-001", "sub-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Title)
	assert.Nil(t, got.AmountCents)
	assert.Nil(t, got.ExpenseDate)

	got, err = repo.GetByID(ctx, "org-001", "sub-002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Team dinner", got.Title)
	require.NotNil(t, got.AmountCents)
	assert.Equal(t, amount, *got.AmountCents)
	require.NotNil(t, got.ExpenseDate)

	// Organization scoping: the submission is invisible from another org.
	got, err = repo.GetByID(ctx, "org-999", "sub-001")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Compare-and-set: only the first transition out of DRAFT wins.
	moved, err := repo.UpdateStatus(ctx, "sub-001", []string{entity.StatusDraft}, entity.StatusSubmitted)
	require.NoError(t, err)
	assert.True(t, moved)
	moved, err = repo.UpdateStatus(ctx, "sub-001", []string{entity.StatusDraft}, entity.StatusSubmitted)
	require.NoError(t, err)
	assert.False(t, moved)

	subs, err := repo.ListByStatus(ctx, "org-001", []string{entity.StatusSubmitted}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	subs, err = repo.ListByCreator(ctx, "org-001", "user-001", 10, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub-001", subs[0].ID)

	counts, err := repo.CountByStatus(ctx, "org-001")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[entity.StatusSubmitted])
}

func TestIntegration_FileRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewFileRepository(db, zap.NewNop())
	seedOrganization(t, db, "org-001")
	seedSubmission(t, db, "org-001", "sub-001", "user-001", entity.StatusDraft)

	// A fresh upload carries no text, analysis or error yet.
	require.NoError(t, repo.Create(ctx, &entity.EvidenceFile{
		ID:           "file-001",
		SubmissionID: "sub-001",
		Kind:         entity.FileKindInvoice,
		ObjectKey:    "orgs/org-001/submissions/sub-001/file-001.pdf",
		FileName:     "invoice.pdf",
		FileSize:     2048,
		MimeType:     "application/pdf",
	}))

	got, err := repo.GetByID(ctx, "org-001", "file-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.AnalysisStatusPending, got.AnalysisStatus)
	assert.Equal(t, "", got.ExtractedText)
	assert.Equal(t, "", got.Analysis)
	assert.Equal(t, "", got.AnalysisError)
	assert.Nil(t, got.AnalyzedAt)

	// Scoped through the submission's organization.
	got, err = repo.GetByID(ctx, "org-999", "file-001")
	require.NoError(t, err)
	assert.Nil(t, got)

	pending, err := repo.GetPendingAnalysis(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "file-001", pending[0].ID)

	require.NoError(t, repo.SetAnalysis(ctx, "file-001", "Invoice No 42", `{"supplier":"ACME GmbH"}`))
	got, err = repo.GetByID(ctx, "org-001", "file-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.AnalysisStatusProcessed, got.AnalysisStatus)
	assert.Equal(t, "Invoice No 42", got.ExtractedText)
	assert.Equal(t, `{"supplier":"ACME GmbH"}`, got.Analysis)
	assert.Equal(t, "", got.AnalysisError)
	require.NotNil(t, got.AnalyzedAt)

	pending, err = repo.GetPendingAnalysis(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.Create(ctx, &entity.EvidenceFile{
		ID:           "file-002",
		SubmissionID: "sub-001",
		Kind:         entity.FileKindReceipt,
		ObjectKey:    "orgs/org-001/submissions/sub-001/file-002.jpg",
		FileName:     "receipt.jpg",
		FileSize:     512,
		MimeType:     "image/jpeg",
	}))
	require.NoError(t, repo.MarkAnalysisFailed(ctx, "file-002", "extraction rejected: unreadable scan"))
	got, err = repo.GetByID(ctx, "org-001", "file-002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.AnalysisStatusFailed, got.AnalysisStatus)
	assert.Equal(t, "extraction rejected: unreadable scan", got.AnalysisError)

	count, err := repo.CountBySubmissionID(ctx, "sub-001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIntegration_CommentRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewCommentRepository(db, zap.NewNop())
	seedOrganization(t, db, "org-001")
	seedSubmission(t, db, "org-001", "sub-001", "user-001", entity.StatusInReview)

	base := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	// A plain comment carries no decision tag.
	require.NoError(t, repo.Create(ctx, &entity.Comment{
		ID:           "cmt-001",
		SubmissionID: "sub-001",
		AuthorID:     "user-001",
		Body:         "Receipts attached.",
		CreatedAt:    base,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Comment{
		ID:           "cmt-002",
		SubmissionID: "sub-001",
		AuthorID:     "reviewer-001",
		Body:         "All good.",
		Decision:     entity.DecisionApprove,
		CreatedAt:    base.Add(time.Minute),
	}))

	comments, err := repo.GetBySubmissionID(ctx, "sub-001")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "cmt-001", comments[0].ID)
	assert.Equal(t, "", comments[0].Decision)
	assert.Equal(t, entity.DecisionApprove, comments[1].Decision)

	count, err := repo.CountBySubmissionID(ctx, "sub-001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIntegration_NotificationRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewNotificationRepository(db, zap.NewNop())
	seedOrganization(t, db, "org-001")

	require.NoError(t, repo.Create(ctx, &entity.Notification{
		ID:             "ntf-001",
		OrganizationID: "org-001",
		UserID:         "user-001",
		Type:           entity.NotificationTypeDecision,
		Message:        `Your submission "Team dinner" was approved`,
	}))

	list, err := repo.ListByUser(ctx, "org-001", "user-001", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationStatusPending, list[0].Status)
	assert.Equal(t, "", list[0].ErrorMessage)
	assert.Nil(t, list[0].SentAt)

	require.NoError(t, repo.MarkFailed(ctx, "ntf-001", "messenger unavailable"))
	list, err = repo.ListByUser(ctx, "org-001", "user-001", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationStatusFailed, list[0].Status)
	assert.Equal(t, "messenger unavailable", list[0].ErrorMessage)

	require.NoError(t, repo.MarkSent(ctx, "ntf-001"))
	list, err = repo.ListByUser(ctx, "org-001", "user-001", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationStatusSent, list[0].Status)
	assert.Equal(t, "", list[0].ErrorMessage)
	require.NotNil(t, list[0].SentAt)
}

func TestIntegration_OrganizationRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewOrganizationRepository(db, zap.NewNop())

	require.NoError(t, repo.Create(ctx, &entity.Organization{
		ID:        "org-001",
		Name:      "Clematis Labs",
		Subdomain: "clematis",
	}))

	got, err := repo.GetBySubdomain(ctx, "clematis")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "org-001", got.ID)

	// Deleting the organization cascades to its submissions.
	seedSubmission(t, db, "org-001", "sub-001", "user-001", entity.StatusDraft)
	require.NoError(t, repo.Delete(ctx, "org-001"))

	subRepo := repository.NewSubmissionRepository(db, zap.NewNop())
	sub, err := subRepo.GetByID(ctx, "org-001", "sub-001")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestIntegration_TransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	txManager := sqlite.NewDB(db, zap.NewNop())
	subRepo := repository.NewSubmissionRepository(db, zap.NewNop())
	commentRepo := repository.NewCommentRepository(db, zap.NewNop())
	seedOrganization(t, db, "org-001")
	seedSubmission(t, db, "org-001", "sub-001", "user-001", entity.StatusSubmitted)

	boom := errors.New("comment insert failed")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := subRepo.UpdateStatus(txCtx, "sub-001", []string{entity.StatusSubmitted}, entity.StatusApproved)
		require.NoError(t, err)
		require.True(t, moved)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The status change rolled back with the failed transaction.
	sub, err := subRepo.GetByID(ctx, "org-001", "sub-001")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.StatusSubmitted, sub.Status)

	// The happy path commits both writes.
	err = txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := subRepo.UpdateStatus(txCtx, "sub-001", []string{entity.StatusSubmitted}, entity.StatusApproved); err != nil {
			return err
		}
		return commentRepo.Create(txCtx, &entity.Comment{
			ID:           "cmt-001",
			SubmissionID: "sub-001",
			AuthorID:     "reviewer-001",
			Body:         "All good.",
			Decision:     entity.DecisionApprove,
		})
	})
	require.NoError(t, err)

	sub, err = subRepo.GetByID(ctx, "org-001", "sub-001")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.StatusApproved, sub.Status)

	comments, err := commentRepo.GetBySubmissionID(ctx, "sub-001")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

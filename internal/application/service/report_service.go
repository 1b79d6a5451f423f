package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// reportListLimit bounds the detail sheet of an activity report.
const reportListLimit = 5000

// ReportService produces organization activity reports for admins.
type ReportService interface {
	// ActivityReport renders an XLSX workbook with per-status counts
	// and the submission list of the actor's organization.
	ActivityReport(ctx context.Context, actor Actor) ([]byte, error)
}

type reportServiceImpl struct {
	submissionRepo port.SubmissionRepository
	logger         *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(submissionRepo port.SubmissionRepository, logger *zap.Logger) ReportService {
	return &reportServiceImpl{
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

func (s *reportServiceImpl) ActivityReport(ctx context.Context, actor Actor) ([]byte, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.Role.CanManageOrganization() {
		return nil, apperr.PermissionDenied("activity reports require the admin role")
	}

	counts, err := s.submissionRepo.CountByStatus(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.ListAll(ctx, actor.OrganizationID, reportListLimit, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close report workbook", zap.Error(err))
		}
	}()

	if err := s.writeSummarySheet(f, counts); err != nil {
		return nil, fmt.Errorf("write summary sheet: %w", err)
	}
	if err := s.writeSubmissionsSheet(f, subs); err != nil {
		return nil, fmt.Errorf("write submissions sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	s.logger.Info("Activity report generated",
		zap.String("organization_id", actor.OrganizationID),
		zap.Int("submission_count", len(subs)))

	return buf.Bytes(), nil
}

func (s *reportServiceImpl) writeSummarySheet(f *excelize.File, counts map[string]int) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Status", "Count"}); err != nil {
		return err
	}

	statuses := []string{
		entity.StatusDraft,
		entity.StatusSubmitted,
		entity.StatusInReview,
		entity.StatusApproved,
		entity.StatusRejected,
	}
	total := 0
	for i, status := range statuses {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{status, counts[status]}); err != nil {
			return err
		}
		total += counts[status]
	}

	cell := fmt.Sprintf("A%d", len(statuses)+2)
	return f.SetSheetRow(sheet, cell, &[]interface{}{"TOTAL", total})
}

func (s *reportServiceImpl) writeSubmissionsSheet(f *excelize.File, subs []*entity.Submission) error {
	const sheet = "Submissions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"ID", "Title", "Expense Type", "Amount", "Expense Date", "Status", "Created By", "Created At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, sub := range subs {
		var amount interface{}
		if sub.AmountCents != nil {
			amount = float64(*sub.AmountCents) / 100
		}
		var expenseDate string
		if sub.ExpenseDate != nil {
			expenseDate = sub.ExpenseDate.Format("2006-01-02")
		}

		row := []interface{}{
			sub.ID,
			sub.Title,
			sub.ExpenseType,
			amount,
			expenseDate,
			sub.Status,
			sub.CreatedBy,
			sub.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

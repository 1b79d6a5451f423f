package service

import (
	"context"
	"time"

	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/domain/role"
)

// Mock repositories

type mockSubmissionRepo struct {
	createFunc        func(ctx context.Context, sub *entity.Submission) error
	getByIDFunc       func(ctx context.Context, orgID, id string) (*entity.Submission, error)
	listByStatusFunc  func(ctx context.Context, orgID string, statuses []string, limit, offset int) ([]*entity.Submission, error)
	listByCreatorFunc func(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Submission, error)
	listAllFunc       func(ctx context.Context, orgID string, limit, offset int) ([]*entity.Submission, error)
	updateStatusFunc  func(ctx context.Context, id string, fromStatuses []string, toStatus string) (bool, error)
	countByStatusFunc func(ctx context.Context, orgID string) (map[string]int, error)
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *entity.Submission) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, sub)
	}
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, orgID, id string) (*entity.Submission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return &entity.Submission{ID: id, OrganizationID: orgID, Status: entity.StatusDraft, CreatedBy: "user-001"}, nil
}

func (m *mockSubmissionRepo) ListByStatus(ctx context.Context, orgID string, statuses []string, limit, offset int) ([]*entity.Submission, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, orgID, statuses, limit, offset)
	}
	return []*entity.Submission{}, nil
}

func (m *mockSubmissionRepo) ListByCreator(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Submission, error) {
	if m.listByCreatorFunc != nil {
		return m.listByCreatorFunc(ctx, orgID, userID, limit, offset)
	}
	return []*entity.Submission{}, nil
}

func (m *mockSubmissionRepo) ListAll(ctx context.Context, orgID string, limit, offset int) ([]*entity.Submission, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx, orgID, limit, offset)
	}
	return []*entity.Submission{}, nil
}

func (m *mockSubmissionRepo) UpdateStatus(ctx context.Context, id string, fromStatuses []string, toStatus string) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, fromStatuses, toStatus)
	}
	return true, nil
}

func (m *mockSubmissionRepo) CountByStatus(ctx context.Context, orgID string) (map[string]int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, orgID)
	}
	return map[string]int{}, nil
}

type mockFileRepo struct {
	createFunc             func(ctx context.Context, file *entity.EvidenceFile) error
	getByIDFunc            func(ctx context.Context, orgID, id string) (*entity.EvidenceFile, error)
	getBySubmissionIDFunc  func(ctx context.Context, submissionID string) ([]*entity.EvidenceFile, error)
	countBySubmissionFunc  func(ctx context.Context, submissionID string) (int, error)
	getPendingAnalysisFunc func(ctx context.Context, limit int) ([]*entity.EvidenceFile, error)
	setAnalysisFunc        func(ctx context.Context, id, extractedText, analysis string) error
	markAnalysisFailedFunc func(ctx context.Context, id, errorMsg string) error
}

func (m *mockFileRepo) Create(ctx context.Context, file *entity.EvidenceFile) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, file)
	}
	return nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, orgID, id string) (*entity.EvidenceFile, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return &entity.EvidenceFile{ID: id, SubmissionID: "sub-001"}, nil
}

func (m *mockFileRepo) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.EvidenceFile, error) {
	if m.getBySubmissionIDFunc != nil {
		return m.getBySubmissionIDFunc(ctx, submissionID)
	}
	return []*entity.EvidenceFile{}, nil
}

func (m *mockFileRepo) CountBySubmissionID(ctx context.Context, submissionID string) (int, error) {
	if m.countBySubmissionFunc != nil {
		return m.countBySubmissionFunc(ctx, submissionID)
	}
	return 1, nil
}

func (m *mockFileRepo) GetPendingAnalysis(ctx context.Context, limit int) ([]*entity.EvidenceFile, error) {
	if m.getPendingAnalysisFunc != nil {
		return m.getPendingAnalysisFunc(ctx, limit)
	}
	return []*entity.EvidenceFile{}, nil
}

func (m *mockFileRepo) SetAnalysis(ctx context.Context, id, extractedText, analysis string) error {
	if m.setAnalysisFunc != nil {
		return m.setAnalysisFunc(ctx, id, extractedText, analysis)
	}
	return nil
}

func (m *mockFileRepo) MarkAnalysisFailed(ctx context.Context, id, errorMsg string) error {
	if m.markAnalysisFailedFunc != nil {
		return m.markAnalysisFailedFunc(ctx, id, errorMsg)
	}
	return nil
}

type mockCommentRepo struct {
	createFunc            func(ctx context.Context, comment *entity.Comment) error
	getBySubmissionIDFunc func(ctx context.Context, submissionID string) ([]*entity.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Comment, error) {
	if m.getBySubmissionIDFunc != nil {
		return m.getBySubmissionIDFunc(ctx, submissionID)
	}
	return []*entity.Comment{}, nil
}

func (m *mockCommentRepo) CountBySubmissionID(ctx context.Context, submissionID string) (int, error) {
	comments, err := m.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

type mockOrgRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Organization, error)
}

func (m *mockOrgRepo) Create(ctx context.Context, org *entity.Organization) error { return nil }

func (m *mockOrgRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Organization{ID: id, Name: "Acme"}, nil
}

func (m *mockOrgRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Organization, error) {
	return nil, nil
}

func (m *mockOrgRepo) Delete(ctx context.Context, id string) error { return nil }

type mockNotificationRepo struct {
	createFunc     func(ctx context.Context, n *entity.Notification) error
	markSentFunc   func(ctx context.Context, id string) error
	markFailedFunc func(ctx context.Context, id, errorMsg string) error
	listByUserFunc func(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id)
	}
	return nil
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id, errorMsg string) error {
	if m.markFailedFunc != nil {
		return m.markFailedFunc(ctx, id, errorMsg)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Notification, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, orgID, userID, limit, offset)
	}
	return []*entity.Notification{}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockRoleProvider struct {
	membershipFunc func(ctx context.Context, userID, orgID string) (*role.Membership, error)
	profileFunc    func(ctx context.Context, userID string) (*role.Profile, error)
}

func (m *mockRoleProvider) Membership(ctx context.Context, userID, orgID string) (*role.Membership, error) {
	if m.membershipFunc != nil {
		return m.membershipFunc(ctx, userID, orgID)
	}
	return &role.Membership{Role: "member"}, nil
}

func (m *mockRoleProvider) Profile(ctx context.Context, userID string) (*role.Profile, error) {
	if m.profileFunc != nil {
		return m.profileFunc(ctx, userID)
	}
	return &role.Profile{DisplayName: "Test User", Email: "test@example.com"}, nil
}

type mockStorage struct {
	putFunc          func(ctx context.Context, key string, content []byte, contentType string) error
	getFunc          func(ctx context.Context, key string) ([]byte, error)
	deleteFunc       func(ctx context.Context, key string) error
	presignedGetFunc func(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func (m *mockStorage) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, key, content, contentType)
	}
	return nil
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return []byte{}, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}

func (m *mockStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.presignedGetFunc != nil {
		return m.presignedGetFunc(ctx, key, expiry)
	}
	return "https://storage.example.com/" + key, nil
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, orgID, userID, typeTag, message string)
}

func (m *mockNotifier) Notify(ctx context.Context, orgID, userID, typeTag, message string) {
	if m.notifyFunc != nil {
		m.notifyFunc(ctx, orgID, userID, typeTag, message)
	}
}

type mockSender struct {
	sendMessageFunc func(ctx context.Context, userID, message string) error
}

func (m *mockSender) SendMessage(ctx context.Context, userID, message string) error {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, userID, message)
	}
	return nil
}

func reviewerActor() Actor {
	return Actor{UserID: "reviewer-001", OrganizationID: "org-001", Role: role.Reviewer}
}

func submitterActor() Actor {
	return Actor{UserID: "user-001", OrganizationID: "org-001", Role: role.Submitter}
}

func adminActor() Actor {
	return Actor{UserID: "admin-001", OrganizationID: "org-001", Role: role.Admin}
}

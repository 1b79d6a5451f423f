package service

import (
	"context"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/domain/role"
	"go.uber.org/zap"
)

// enricher assembles submission details: files, ordered comments and
// author display info resolved from the identity provider. Provider
// lookups are best-effort; a failed lookup leaves the info absent.
type enricher struct {
	fileRepo    port.FileRepository
	commentRepo port.CommentRepository
	provider    role.Provider
	logger      *zap.Logger
}

func newEnricher(fileRepo port.FileRepository, commentRepo port.CommentRepository, provider role.Provider, logger *zap.Logger) *enricher {
	return &enricher{
		fileRepo:    fileRepo,
		commentRepo: commentRepo,
		provider:    provider,
		logger:      logger,
	}
}

// detail builds a SubmissionDetail for one submission. The authors map
// caches provider lookups across calls within one request.
func (e *enricher) detail(ctx context.Context, sub *entity.Submission, authors map[string]*entity.AuthorInfo) (*entity.SubmissionDetail, error) {
	files, err := e.fileRepo.GetBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	comments, err := e.commentRepo.GetBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		c.Author = e.author(ctx, c.AuthorID, authors)
	}

	return &entity.SubmissionDetail{
		Submission: sub,
		Files:      files,
		Comments:   comments,
		Author:     e.author(ctx, sub.CreatedBy, authors),
	}, nil
}

func (e *enricher) author(ctx context.Context, userID string, cache map[string]*entity.AuthorInfo) *entity.AuthorInfo {
	if info, ok := cache[userID]; ok {
		return info
	}

	info := &entity.AuthorInfo{UserID: userID}
	profile, err := e.provider.Profile(ctx, userID)
	if err != nil {
		e.logger.Warn("Failed to resolve author info",
			zap.String("user_id", userID),
			zap.Error(err))
	} else if profile != nil {
		info.DisplayName = profile.DisplayName
		info.Email = profile.Email
	}

	cache[userID] = info
	return info
}

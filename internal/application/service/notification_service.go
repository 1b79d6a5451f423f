package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// NotificationService persists notification events and forwards them to
// the delivery channel. It is the side channel of the review workflow:
// nothing here may fail a caller.
type NotificationService interface {
	Notifier

	// List returns the acting user's notification feed, newest first.
	List(ctx context.Context, actor Actor, limit, offset int) ([]*entity.Notification, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	sender           port.MessageSender
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService. sender may
// be nil, in which case events are persisted for the feed only.
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	sender port.MessageSender,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		sender:           sender,
		logger:           logger,
	}
}

// Notify persists the event and attempts delivery. Every failure is
// logged and swallowed.
func (s *notificationServiceImpl) Notify(ctx context.Context, orgID, userID, typeTag, message string) {
	n := &entity.Notification{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		UserID:         userID,
		Type:           typeTag,
		Message:        message,
		Status:         entity.NotificationStatusPending,
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist notification",
			zap.String("user_id", userID),
			zap.String("type", typeTag),
			zap.Error(err))
		return
	}

	if s.sender == nil {
		if err := s.notificationRepo.MarkSent(ctx, n.ID); err != nil {
			s.logger.Warn("Failed to mark notification sent",
				zap.String("notification_id", n.ID),
				zap.Error(err))
		}
		return
	}

	if err := s.sender.SendMessage(ctx, userID, message); err != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("notification_id", n.ID),
			zap.String("user_id", userID),
			zap.Error(err))
		if markErr := s.notificationRepo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			s.logger.Warn("Failed to mark notification failed",
				zap.String("notification_id", n.ID),
				zap.Error(markErr))
		}
		return
	}

	if err := s.notificationRepo.MarkSent(ctx, n.ID); err != nil {
		s.logger.Warn("Failed to mark notification sent",
			zap.String("notification_id", n.ID),
			zap.Error(err))
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, actor Actor, limit, offset int) ([]*entity.Notification, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)
	return s.notificationRepo.ListByUser(ctx, actor.OrganizationID, actor.UserID, limit, offset)
}

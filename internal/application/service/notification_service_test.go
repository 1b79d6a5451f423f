package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

func TestNotificationService_Notify(t *testing.T) {
	t.Run("persists and delivers", func(t *testing.T) {
		var created *entity.Notification
		var markedSent string
		repo := &mockNotificationRepo{
			createFunc: func(ctx context.Context, n *entity.Notification) error {
				created = n
				return nil
			},
			markSentFunc: func(ctx context.Context, id string) error {
				markedSent = id
				return nil
			},
		}
		var sentTo string
		sender := &mockSender{
			sendMessageFunc: func(ctx context.Context, userID, message string) error {
				sentTo = userID
				return nil
			},
		}

		service := NewNotificationService(repo, sender, zap.NewNop())
		service.Notify(context.Background(), "org-001", "user-001", entity.NotificationTypeDecision, "approved")

		if created == nil {
			t.Fatal("Notify() did not persist the notification")
		}
		if created.Status != entity.NotificationStatusPending {
			t.Errorf("Notify() initial status = %v, want %v", created.Status, entity.NotificationStatusPending)
		}
		if sentTo != "user-001" {
			t.Errorf("Notify() delivered to %v, want user-001", sentTo)
		}
		if markedSent != created.ID {
			t.Errorf("Notify() marked %v sent, want %v", markedSent, created.ID)
		}
	})

	t.Run("delivery failure is recorded and swallowed", func(t *testing.T) {
		var markedFailed string
		var failureMsg string
		repo := &mockNotificationRepo{
			markFailedFunc: func(ctx context.Context, id, errorMsg string) error {
				markedFailed = id
				failureMsg = errorMsg
				return nil
			},
			markSentFunc: func(ctx context.Context, id string) error {
				t.Error("Notify() marked a failed delivery as sent")
				return nil
			},
		}
		sender := &mockSender{
			sendMessageFunc: func(ctx context.Context, userID, message string) error {
				return errors.New("rate limited")
			},
		}

		service := NewNotificationService(repo, sender, zap.NewNop())
		service.Notify(context.Background(), "org-001", "user-001", entity.NotificationTypeComment, "new comment")

		if markedFailed == "" {
			t.Error("Notify() did not record the delivery failure")
		}
		if failureMsg != "rate limited" {
			t.Errorf("Notify() failure message = %q", failureMsg)
		}
	})

	t.Run("persistence failure is swallowed", func(t *testing.T) {
		repo := &mockNotificationRepo{
			createFunc: func(ctx context.Context, n *entity.Notification) error {
				return errors.New("disk full")
			},
		}
		sender := &mockSender{
			sendMessageFunc: func(ctx context.Context, userID, message string) error {
				t.Error("Notify() attempted delivery of an unpersisted notification")
				return nil
			},
		}

		service := NewNotificationService(repo, sender, zap.NewNop())
		// Must not panic or propagate.
		service.Notify(context.Background(), "org-001", "user-001", entity.NotificationTypeDecision, "approved")
	})

	t.Run("nil sender keeps the feed only", func(t *testing.T) {
		var markedSent bool
		repo := &mockNotificationRepo{
			markSentFunc: func(ctx context.Context, id string) error {
				markedSent = true
				return nil
			},
		}

		service := NewNotificationService(repo, nil, zap.NewNop())
		service.Notify(context.Background(), "org-001", "user-001", entity.NotificationTypeDecision, "approved")

		if !markedSent {
			t.Error("Notify() with nil sender did not settle the notification")
		}
	})
}

func TestNotificationService_List(t *testing.T) {
	repo := &mockNotificationRepo{
		listByUserFunc: func(ctx context.Context, orgID, userID string, limit, offset int) ([]*entity.Notification, error) {
			if orgID != "org-001" || userID != "user-001" {
				t.Errorf("List() queried org %v user %v", orgID, userID)
			}
			return []*entity.Notification{{ID: "n-001"}}, nil
		},
	}

	service := NewNotificationService(repo, &mockSender{}, zap.NewNop())

	notifications, err := service.List(context.Background(), submitterActor(), 20, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("List() returned %d notifications, want 1", len(notifications))
	}
}

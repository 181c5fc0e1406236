package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	pusher           RealtimePusher
	publisher        NotificationPublisher
	logger           *zap.Logger
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	pusher RealtimePusher,
	publisher NotificationPublisher,
	logger *zap.Logger,
) *NotificationUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		pusher:           pusher,
		publisher:        publisher,
		logger:           logger,
	}
}

// Notify stores a notification and fans it out. It never fails the caller:
// every error is logged and the notification is dropped.
func (uc *NotificationUseCase) Notify(ctx context.Context, userID, notificationType, title, message, relatedID string) *entity.Notification {
	n := &entity.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now(),
	}

	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		uc.logger.Warn("failed to create notification",
			zap.String("userId", userID),
			zap.String("type", notificationType),
			zap.String("relatedId", relatedID),
			zap.Error(err))
		return nil
	}

	if uc.pusher != nil {
		if err := uc.pusher.Push(userID, websocket.EventNotification, n); err != nil {
			uc.logger.Warn("failed to push notification", zap.String("notificationId", n.ID), zap.Error(err))
		}
	}
	if uc.publisher != nil {
		if _, err := uc.publisher.PublishNotification(ctx, n); err != nil {
			uc.logger.Warn("failed to publish notification", zap.String("notificationId", n.ID), zap.Error(err))
		}
	}
	return n
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	return uc.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	n, err := uc.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return errors.NotFound("Notification", nil)
	}
	if n.Read {
		return nil
	}
	return uc.notificationRepo.MarkRead(ctx, id)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

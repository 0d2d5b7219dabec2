package usecase

import (
	"context"

	"jobscout/internal/domain/notification"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

type NotificationUsecase struct {
	notifications repository.NotificationRepository
}

func NewNotificationUsecase(notifications repository.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

func (u *NotificationUsecase) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]notification.Notification, error) {
	return u.notifications.ListByUser(ctx, userID, unreadOnly, limit)
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return u.notifications.UnreadCount(ctx, userID)
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return u.notifications.MarkRead(ctx, userID, id)
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return u.notifications.MarkAllRead(ctx, userID)
}

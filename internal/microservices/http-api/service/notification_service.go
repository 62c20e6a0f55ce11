package service

import (
	"context"
	"errors"

	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"
)

type NotificationService interface {
	GetUnread(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) GetUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.GetUnreadByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// MarkAsRead fails with ErrNotificationNotFound when the notification is
// missing, already read, or owned by another user.
func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	err := s.repo.MarkAsRead(ctx, userID, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return storeErr("mark notification read", err)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return storeErr("mark notifications read", s.repo.MarkAllAsRead(ctx, userID))
}

package service

import (
	"context"

	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/repository"
)

const notificationPageSize = 100

// NotificationService handles reading and acknowledging notifications
type NotificationService struct {
	repo *repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the latest notifications of a user and the unread count
func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, int64, error) {
	items, err := s.repo.List(ctx, userID, unreadOnly, notificationPageSize)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead acknowledges one notification
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead acknowledges every notification and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

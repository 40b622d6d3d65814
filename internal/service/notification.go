package service

import (
	"context"

	"promptplay-api/internal/model"
	"promptplay-api/internal/repository"
)

// DefaultNotificationLimit caps how many notifications a single list call returns.
const DefaultNotificationLimit = 50

// NotificationService reads and mutates the notification inbox. Creation
// happens in the worker, off the request path.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the newest notifications plus the unread count for the badge.
func (s *NotificationService) List(ctx context.Context, userID int64) (*model.NotificationListResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, DefaultNotificationLimit)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

// MarkRead marks the given notifications as read; an empty list marks all.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return s.repo.MarkAllRead(ctx, userID)
	}
	return s.repo.MarkRead(ctx, userID, ids)
}

// CreateFromEvent persists a notification row for a consumed game event.
// Called by the worker, so it satisfies the worker's NotificationCreator
// interface.
func (s *NotificationService) CreateFromEvent(ctx context.Context, recipientID, actorID int64, notifType string, gameID, sport, location string) error {
	n := &model.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Type:    notifType,
	}
	if gameID != "" {
		n.GameID = &gameID
	}
	if sport != "" {
		n.Sport = &sport
	}
	if location != "" {
		n.Location = &location
	}

	return s.repo.Create(ctx, n)
}

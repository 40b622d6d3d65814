package worker

import (
	"context"
	"fmt"
	"log"

	"promptplay-api/internal/model"
	"promptplay-api/internal/queue"
)

// NotificationCreator defines the interface for creating notifications.
// This allows the worker to persist notifications without depending on the
// service layer directly.
type NotificationCreator interface {
	CreateFromEvent(ctx context.Context, recipientID, actorID int64, notifType string, gameID, sport, location string) error
}

// Handler turns game events from the queue into notification rows.
type Handler struct {
	notifCreator NotificationCreator
}

// NewHandler creates a new event handler.
func NewHandler(notifCreator NotificationCreator) *Handler {
	return &Handler{notifCreator: notifCreator}
}

// HandleEvent routes an event to the matching notification type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.GameEvent) error {
	var notifType string

	switch event.Type {
	case queue.EventJoinRequested:
		notifType = model.NotificationTypeJoinRequested
	case queue.EventJoinAccepted:
		notifType = model.NotificationTypeJoinAccepted
	case queue.EventJoinRejected:
		notifType = model.NotificationTypeJoinRejected
	case queue.EventGameCancelled:
		notifType = model.NotificationTypeGameCancelled
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	err := h.notifCreator.CreateFromEvent(ctx, event.RecipientID, event.ActorID, notifType,
		event.GameID, event.Sport, event.Location)
	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s game=%s recipient=%d err=%v",
			event.Type, event.GameID, event.RecipientID, err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s game=%s recipient=%d",
		event.Type, event.GameID, event.RecipientID)
	return nil
}

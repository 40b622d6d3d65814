package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the game stream
const (
	EventJoinRequested = "join_requested"
	EventJoinAccepted  = "join_accepted"
	EventJoinRejected  = "join_rejected"
	EventGameCancelled = "game_cancelled"
)

// Stream names
const (
	StreamGames = "stream:games"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// GameEvent represents an event published to the game stream. All
// notification-producing events share this structure. Sport and Location are
// snapshots so the notification worker doesn't need the game row, which may
// already be gone for cancellation events.
type GameEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	GameID   string `json:"game_id"`
	Sport    string `json:"sport,omitempty"`
	Location string `json:"location,omitempty"`

	// ActorID is who triggered the event, RecipientID who gets notified.
	ActorID     int64 `json:"actor_id"`
	RecipientID int64 `json:"recipient_id"`

	JoinRequestID int64 `json:"join_request_id,omitempty"`
}

// NewJoinRequestedEvent notifies the host that someone asked to join.
func NewJoinRequestedEvent(gameID, sport, location string, requesterID, hostID, joinRequestID int64) GameEvent {
	return GameEvent{
		Type:          EventJoinRequested,
		Timestamp:     time.Now().Unix(),
		GameID:        gameID,
		Sport:         sport,
		Location:      location,
		ActorID:       requesterID,
		RecipientID:   hostID,
		JoinRequestID: joinRequestID,
	}
}

// NewJoinDecidedEvent notifies the requester that the host accepted or
// rejected their request. accepted selects the event type.
func NewJoinDecidedEvent(gameID, sport, location string, hostID, requesterID, joinRequestID int64, accepted bool) GameEvent {
	eventType := EventJoinRejected
	if accepted {
		eventType = EventJoinAccepted
	}
	return GameEvent{
		Type:          eventType,
		Timestamp:     time.Now().Unix(),
		GameID:        gameID,
		Sport:         sport,
		Location:      location,
		ActorID:       hostID,
		RecipientID:   requesterID,
		JoinRequestID: joinRequestID,
	}
}

// NewGameCancelledEvent notifies one requester that the host deleted the game.
func NewGameCancelledEvent(gameID, sport, location string, hostID, requesterID int64) GameEvent {
	return GameEvent{
		Type:        EventGameCancelled,
		Timestamp:   time.Now().Unix(),
		GameID:      gameID,
		Sport:       sport,
		Location:    location,
		ActorID:     hostID,
		RecipientID: requesterID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e GameEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseGameEvent parses a GameEvent from Redis stream message values.
func ParseGameEvent(values map[string]interface{}) (GameEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return GameEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event GameEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return GameEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

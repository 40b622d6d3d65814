package model

import "time"

// Notification types
const (
	NotificationTypeJoinRequested = "join_requested"
	NotificationTypeJoinAccepted  = "join_accepted"
	NotificationTypeJoinRejected  = "join_rejected"
	NotificationTypeGameCancelled = "game_cancelled"
)

// Notification represents a single notification record in the database.
// Sport and Location are snapshots taken when the event was published so the
// notification stays readable after the game row is deleted.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`         // Recipient
	ActorID   int64     `db:"actor_id" json:"actor_id"` // Who triggered it
	Type      string    `db:"type" json:"type"`
	GameID    *string   `db:"game_id" json:"game_id,omitempty"`
	Sport     *string   `db:"sport" json:"sport,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined field for display
	ActorUsername string `db:"actor_username" json:"actor_username"`
}

// NotificationListResponse is returned by GET /notifications.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// MarkReadRequest is the request body for marking notifications as read.
// An empty list marks everything as read.
type MarkReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids"`
}

package model

import (
	"errors"
	"time"
)

// Join request statuses. A request starts pending and is decided exactly once
// by the game's host; there is no undo back to pending.
const (
	JoinStatusPending  = "pending"
	JoinStatusAccepted = "accepted"
	JoinStatusRejected = "rejected"
)

// JoinRequest represents a user's request to fill a slot on a game.
// At most one exists per (game, user) pair, enforced by a unique constraint.
type JoinRequest struct {
	ID          int64     `db:"id" json:"id"`
	GameID      string    `db:"game_id" json:"game_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Description *string   `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`

	// Joined field (not in join_requests table)
	Username string `db:"username" json:"username"`
}

// JoinGameRequest is the request body for POST /games/{id}/join.
type JoinGameRequest struct {
	Description *string `json:"description"`
}

// DecideJoinRequest is the request body for PUT /join-requests/{id}.
type DecideJoinRequest struct {
	Status string `json:"status"` // accepted or rejected
}

// Join request errors
var (
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrAlreadyRequested    = errors.New("already requested to join this game")
	ErrAlreadyDecided      = errors.New("join request already decided")
	ErrInvalidJoinStatus   = errors.New("status must be 'accepted' or 'rejected'")
)

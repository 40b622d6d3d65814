package model

import (
	"errors"
	"time"
)

// Game lifecycle statuses.
const (
	GameStatusOpen      = "open"
	GameStatusFull      = "full"
	GameStatusCancelled = "cancelled"
)

// Game represents a host's request for players, extracted from a
// natural-language prompt. The identifier is an opaque UUID string.
type Game struct {
	ID             string    `db:"id" json:"id"`
	HostID         int64     `db:"host_id" json:"host_id"`
	OriginalPrompt string    `db:"original_prompt" json:"original_prompt"`
	Sport          string    `db:"sport" json:"sport"`
	Location       string    `db:"location" json:"location"`
	DatetimeUTC    time.Time `db:"datetime_utc" json:"datetime_utc"`
	PlayersNeeded  int       `db:"players_needed" json:"players_needed"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Joined field (not in game_requests table)
	HostUsername string `db:"host_username" json:"host_username"`
}

// GameView is a Game annotated with the derived accepted-join count.
// PlayersJoined is always recomputed from join_requests, never stored,
// so it cannot drift from the join-request table.
type GameView struct {
	Game
	PlayersJoined int `json:"players_joined"`
}

// PromptRequest is the request body for the extraction and matching endpoints.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// NeedsInfo is the normal (non-error) outcome of extraction when the prompt
// is missing required fields.
type NeedsInfo struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields"`
	Suggestions   string   `json:"suggestions"`
	YourPrompt    string   `json:"your_prompt"`
}

// ExtractedGame holds the structured fields pulled out of a prompt once all
// of them validated.
type ExtractedGame struct {
	Sport         string
	Location      string
	DatetimeUTC   time.Time
	PlayersNeeded int
}

// MatchResult pairs an open game with the compatibility verdict for a prompt.
type MatchResult struct {
	GameRequest        GameView `json:"game_request"`
	IsMatch            bool     `json:"is_match"`
	CompatibilityScore int      `json:"compatibility_score"`
	Reason             string   `json:"reason"`
}

// Game errors
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotOpen     = errors.New("game is not open for joining")
	ErrNotGameHost     = errors.New("not the host of this game")
	ErrNoPlayersNeeded = errors.New("players_needed must be greater than zero")
	ErrOwnGame         = errors.New("cannot join your own game")
)

package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied on startup. join_requests carries an explicit
// ON DELETE CASCADE so deleting a game can never orphan its join requests,
// and UNIQUE(game_id, user_id) enforces one request per user per game.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	email TEXT UNIQUE,
	password_hashed TEXT,
	is_guest BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS game_requests (
	id TEXT PRIMARY KEY,
	host_id BIGINT NOT NULL REFERENCES users(id),
	original_prompt TEXT NOT NULL,
	sport TEXT NOT NULL,
	location TEXT NOT NULL,
	datetime_utc TIMESTAMPTZ NOT NULL,
	players_needed INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'open',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS join_requests (
	id BIGSERIAL PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES game_requests(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users(id),
	description TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (game_id, user_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	actor_id BIGINT NOT NULL,
	type TEXT NOT NULL,
	game_id TEXT,
	sport TEXT,
	location TEXT,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_game_requests_host ON game_requests(host_id);
CREATE INDEX IF NOT EXISTS idx_game_requests_status ON game_requests(status);
CREATE INDEX IF NOT EXISTS idx_join_requests_game ON join_requests(game_id);
CREATE INDEX IF NOT EXISTS idx_join_requests_user ON join_requests(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`

// Migrate creates the tables and indexes if they don't exist.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

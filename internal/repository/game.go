package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"promptplay-api/internal/model"
)

type gameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) GameRepository {
	return &gameRepository{db: db}
}

const gameColumns = `
	g.id, g.host_id, g.original_prompt, g.sport, g.location,
	g.datetime_utc, g.players_needed, g.status, g.created_at,
	u.username AS host_username
`

func (r *gameRepository) Create(ctx context.Context, game *model.Game) error {
	query := `
		INSERT INTO game_requests (id, host_id, original_prompt, sport, location, datetime_utc, players_needed, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		game.ID,
		game.HostID,
		game.OriginalPrompt,
		game.Sport,
		game.Location,
		game.DatetimeUTC,
		game.PlayersNeeded,
		game.Status,
	)

	if err := row.Scan(&game.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	return nil
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_requests g
		JOIN users u ON u.id = g.host_id
		WHERE g.id = $1
	`

	var g model.Game
	err := r.db.GetContext(ctx, &g, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return &g, nil
}

// GetForUpdate locks the game row for the duration of tx. The join-decision
// path relies on this lock to make the count-and-flip-to-full step atomic.
func (r *gameRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Game, error) {
	query := `
		SELECT id, host_id, original_prompt, sport, location,
		       datetime_utc, players_needed, status, created_at
		FROM game_requests
		WHERE id = $1
		FOR UPDATE
	`

	var g model.Game
	err := tx.GetContext(ctx, &g, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to lock game row: %w", err)
	}

	return &g, nil
}

func (r *gameRepository) ListAll(ctx context.Context) ([]model.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_requests g
		JOIN users u ON u.id = g.host_id
		ORDER BY g.created_at DESC
	`

	var games []model.Game
	if err := r.db.SelectContext(ctx, &games, query); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (r *gameRepository) ListOpen(ctx context.Context) ([]model.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_requests g
		JOIN users u ON u.id = g.host_id
		WHERE g.status = $1
		ORDER BY g.created_at DESC
	`

	var games []model.Game
	if err := r.db.SelectContext(ctx, &games, query, model.GameStatusOpen); err != nil {
		return nil, fmt.Errorf("failed to list open games: %w", err)
	}

	return games, nil
}

func (r *gameRepository) ListByHost(ctx context.Context, hostID int64) ([]model.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_requests g
		JOIN users u ON u.id = g.host_id
		WHERE g.host_id = $1
		ORDER BY g.created_at DESC
	`

	var games []model.Game
	if err := r.db.SelectContext(ctx, &games, query, hostID); err != nil {
		return nil, fmt.Errorf("failed to list hosted games: %w", err)
	}

	return games, nil
}

func (r *gameRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id, status string) error {
	query := `UPDATE game_requests SET status = $1 WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrGameNotFound
	}

	return nil
}

// Delete removes the game row. Its join requests go with it via the
// ON DELETE CASCADE constraint on join_requests.game_id.
func (r *gameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM game_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrGameNotFound
	}

	return nil
}

func (r *gameRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM game_requests`)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

func (r *gameRepository) CountAcceptedTx(ctx context.Context, tx *sqlx.Tx, gameID string) (int, error) {
	query := `SELECT COUNT(*) FROM join_requests WHERE game_id = $1 AND status = $2`

	var count int
	err := tx.GetContext(ctx, &count, query, gameID, model.JoinStatusAccepted)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted joins: %w", err)
	}
	return count, nil
}

// CountAcceptedBulk returns accepted-join counts for many games in one query.
// Games with no accepted joins are absent from the map.
func (r *gameRepository) CountAcceptedBulk(ctx context.Context, gameIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(gameIDs))
	if len(gameIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT game_id, COUNT(*) AS accepted
		FROM join_requests
		WHERE game_id = ANY($1) AND status = $2
		GROUP BY game_id
	`

	type countRow struct {
		GameID   string `db:"game_id"`
		Accepted int    `db:"accepted"`
	}

	var rows []countRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(gameIDs), model.JoinStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk count accepted joins: %w", err)
	}

	for _, row := range rows {
		counts[row.GameID] = row.Accepted
	}

	return counts, nil
}

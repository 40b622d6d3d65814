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

type joinRequestRepository struct {
	db *sqlx.DB
}

func NewJoinRequestRepository(db *sqlx.DB) JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

// Create inserts a pending join request. The UNIQUE(game_id, user_id)
// constraint is the backstop against duplicate requests racing past the
// service-level existence check.
func (r *joinRequestRepository) Create(ctx context.Context, jr *model.JoinRequest) error {
	query := `
		INSERT INTO join_requests (game_id, user_id, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		jr.GameID,
		jr.UserID,
		jr.Description,
		jr.Status,
	)

	err := row.Scan(&jr.ID, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return model.ErrAlreadyRequested
		}
		return fmt.Errorf("failed to insert join request: %w", err)
	}

	return nil
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id int64) (*model.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.game_id, jr.user_id, jr.description, jr.status,
		       jr.created_at, jr.updated_at, u.username
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.id = $1
	`

	var jr model.JoinRequest
	err := r.db.GetContext(ctx, &jr, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to get join request by id: %w", err)
	}

	return &jr, nil
}

func (r *joinRequestRepository) ExistsForUser(ctx context.Context, gameID string, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM join_requests WHERE game_id = $1 AND user_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, gameID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check join request existence: %w", err)
	}

	return exists, nil
}

func (r *joinRequestRepository) ListByGame(ctx context.Context, gameID string) ([]model.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.game_id, jr.user_id, jr.description, jr.status,
		       jr.created_at, jr.updated_at, u.username
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.game_id = $1
		ORDER BY jr.created_at ASC
	`

	var requests []model.JoinRequest
	if err := r.db.SelectContext(ctx, &requests, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}

	return requests, nil
}

func (r *joinRequestRepository) ListAcceptedByUser(ctx context.Context, userID int64) ([]model.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.game_id, jr.user_id, jr.description, jr.status,
		       jr.created_at, jr.updated_at, u.username
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.user_id = $1 AND jr.status = $2
		ORDER BY jr.created_at DESC
	`

	var requests []model.JoinRequest
	if err := r.db.SelectContext(ctx, &requests, query, userID, model.JoinStatusAccepted); err != nil {
		return nil, fmt.Errorf("failed to list accepted join requests: %w", err)
	}

	return requests, nil
}

// ListRequesterIDsByGame returns every user with a join request on the game,
// regardless of status. Used to notify them when the host cancels.
func (r *joinRequestRepository) ListRequesterIDsByGame(ctx context.Context, gameID string) ([]int64, error) {
	query := `SELECT user_id FROM join_requests WHERE game_id = $1`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to list requester ids: %w", err)
	}

	return ids, nil
}

func (r *joinRequestRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id int64, status string) error {
	query := `UPDATE join_requests SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update join request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrJoinRequestNotFound
	}

	return nil
}

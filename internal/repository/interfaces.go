package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"promptplay-api/internal/model"
)

// TxRunner runs fn inside one database transaction: commit when fn returns
// nil, roll back otherwise. Services depend on this instead of *sqlx.DB so
// transactional flows stay testable.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	// GetForUpdate locks the game row inside tx so a concurrent accept cannot
	// race the accepted-count check.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Game, error)
	ListAll(ctx context.Context) ([]model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByHost(ctx context.Context, hostID int64) ([]model.Game, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id, status string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// CountAcceptedTx derives the players-joined figure from join_requests,
	// under the caller's transaction.
	CountAcceptedTx(ctx context.Context, tx *sqlx.Tx, gameID string) (int, error)
	CountAcceptedBulk(ctx context.Context, gameIDs []string) (map[string]int, error)
}

type JoinRequestRepository interface {
	Create(ctx context.Context, jr *model.JoinRequest) error
	GetByID(ctx context.Context, id int64) (*model.JoinRequest, error)
	ExistsForUser(ctx context.Context, gameID string, userID int64) (bool, error)
	ListByGame(ctx context.Context, gameID string) ([]model.JoinRequest, error)
	ListAcceptedByUser(ctx context.Context, userID int64) ([]model.JoinRequest, error)
	ListRequesterIDsByGame(ctx context.Context, gameID string) ([]int64, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id int64, status string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, ids []int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

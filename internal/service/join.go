package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"promptplay-api/internal/model"
	"promptplay-api/internal/queue"
	"promptplay-api/internal/repository"
)

// JoinService owns the join-request state machine: create while open, decide
// once by the host, flip the game to full when the accepted count reaches
// players_needed.
type JoinService struct {
	joinRepo  repository.JoinRequestRepository
	gameRepo  repository.GameRepository
	tx        repository.TxRunner
	publisher queue.Publisher
}

func NewJoinService(
	joinRepo repository.JoinRequestRepository,
	gameRepo repository.GameRepository,
	tx repository.TxRunner,
	publisher queue.Publisher,
) *JoinService {
	return &JoinService{
		joinRepo:  joinRepo,
		gameRepo:  gameRepo,
		tx:        tx,
		publisher: publisher,
	}
}

// Join creates a pending join request for the caller on an open game.
// Self-joins and duplicates are rejected as errors, not silent no-ops.
func (s *JoinService) Join(ctx context.Context, gameID string, userID int64, username string, description *string) (*model.JoinRequest, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.GameStatusOpen {
		return nil, model.ErrGameNotOpen
	}
	if game.HostID == userID {
		return nil, model.ErrOwnGame
	}

	exists, err := s.joinRepo.ExistsForUser(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrAlreadyRequested
	}

	jr := &model.JoinRequest{
		GameID:      gameID,
		UserID:      userID,
		Username:    username,
		Description: description,
		Status:      model.JoinStatusPending,
	}

	if err := s.joinRepo.Create(ctx, jr); err != nil {
		return nil, err
	}

	event := queue.NewJoinRequestedEvent(game.ID, game.Sport, game.Location, userID, game.HostID, jr.ID)
	if _, err := s.publisher.Publish(ctx, queue.StreamGames, event); err != nil {
		log.Printf("[Join] publish join event failed: game=%s requester=%d err=%v", game.ID, userID, err)
	}

	return jr, nil
}

// ListForGame returns all join requests on a game; only the host may look.
func (s *JoinService) ListForGame(ctx context.Context, gameID string, callerID int64) ([]model.JoinRequest, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.HostID != callerID {
		return nil, model.ErrNotGameHost
	}

	return s.joinRepo.ListByGame(ctx, gameID)
}

// Decide sets a pending join request to accepted or rejected. Only the host
// of the request's game may decide, and only once. On acceptance the game row
// is locked, the accepted count recomputed, and the game flipped to full when
// the count reaches players_needed - all inside one transaction, so two
// near-simultaneous accepts cannot both read a stale count.
func (s *JoinService) Decide(ctx context.Context, joinRequestID, callerID int64, status string) (*model.JoinRequest, error) {
	if status != model.JoinStatusAccepted && status != model.JoinStatusRejected {
		return nil, model.ErrInvalidJoinStatus
	}

	jr, err := s.joinRepo.GetByID(ctx, joinRequestID)
	if err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, jr.GameID)
	if err != nil {
		return nil, err
	}
	if game.HostID != callerID {
		return nil, model.ErrNotGameHost
	}
	if jr.Status != model.JoinStatusPending {
		return nil, model.ErrAlreadyDecided
	}

	err = s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.gameRepo.GetForUpdate(ctx, tx, jr.GameID)
		if err != nil {
			return err
		}

		if err := s.joinRepo.UpdateStatus(ctx, tx, joinRequestID, status); err != nil {
			return err
		}

		if status == model.JoinStatusAccepted {
			accepted, err := s.gameRepo.CountAcceptedTx(ctx, tx, jr.GameID)
			if err != nil {
				return err
			}
			if accepted >= locked.PlayersNeeded && locked.Status == model.GameStatusOpen {
				if err := s.gameRepo.UpdateStatus(ctx, tx, jr.GameID, model.GameStatusFull); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	jr.Status = status

	event := queue.NewJoinDecidedEvent(game.ID, game.Sport, game.Location, callerID, jr.UserID, jr.ID,
		status == model.JoinStatusAccepted)
	if _, err := s.publisher.Publish(ctx, queue.StreamGames, event); err != nil {
		log.Printf("[Join] publish decision event failed: request=%d err=%v", jr.ID, err)
	}

	return jr, nil
}

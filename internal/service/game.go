package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"promptplay-api/internal/model"
	"promptplay-api/internal/queue"
	"promptplay-api/internal/repository"
)

// GameService owns the game-request lifecycle: creation from a prompt via the
// extraction adapter, annotated listings, and host-only deletion.
type GameService struct {
	gameRepo   repository.GameRepository
	joinRepo   repository.JoinRequestRepository
	userRepo   repository.UserRepository
	extraction *ExtractionService
	publisher  queue.Publisher
}

func NewGameService(
	gameRepo repository.GameRepository,
	joinRepo repository.JoinRequestRepository,
	userRepo repository.UserRepository,
	extraction *ExtractionService,
	publisher queue.Publisher,
) *GameService {
	return &GameService{
		gameRepo:   gameRepo,
		joinRepo:   joinRepo,
		userRepo:   userRepo,
		extraction: extraction,
		publisher:  publisher,
	}
}

// CreateFromPrompt runs the extraction pipeline and persists a new open game
// when every field validated. The NeedsInfo outcome is normal, not an error:
// nothing is persisted and the caller relays the missing fields.
func (s *GameService) CreateFromPrompt(ctx context.Context, hostID int64, hostUsername, prompt string) (*model.GameView, *model.NeedsInfo, error) {
	extracted, needsInfo, err := s.extraction.Extract(ctx, prompt, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if needsInfo != nil {
		return nil, needsInfo, nil
	}

	if extracted.PlayersNeeded <= 0 {
		return nil, nil, model.ErrNoPlayersNeeded
	}

	game := &model.Game{
		ID:             uuid.New().String(),
		HostID:         hostID,
		HostUsername:   hostUsername,
		OriginalPrompt: prompt,
		Sport:          extracted.Sport,
		Location:       extracted.Location,
		DatetimeUTC:    extracted.DatetimeUTC,
		PlayersNeeded:  extracted.PlayersNeeded,
		Status:         model.GameStatusOpen,
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &model.GameView{Game: *game, PlayersJoined: 0}, nil, nil
}

// ListAll returns every game annotated with its derived accepted-join count.
func (s *GameService) ListAll(ctx context.Context) ([]model.GameView, error) {
	games, err := s.gameRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, games)
}

// ListHostedBy returns the caller's games, annotated.
func (s *GameService) ListHostedBy(ctx context.Context, hostID int64) ([]model.GameView, error) {
	games, err := s.gameRepo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, games)
}

// ListJoinedBy returns the games where the caller holds an accepted join
// request, annotated.
func (s *GameService) ListJoinedBy(ctx context.Context, userID int64) ([]model.GameView, error) {
	joins, err := s.joinRepo.ListAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	games := make([]model.Game, 0, len(joins))
	for _, join := range joins {
		game, err := s.gameRepo.GetByID(ctx, join.GameID)
		if err != nil {
			// The game can disappear between the join lookup and here; skip it.
			continue
		}
		games = append(games, *game)
	}

	return s.annotate(ctx, games)
}

// Delete removes a game after checking the caller hosts it. Join requests go
// with it (FK cascade); everyone who had requested gets a cancellation event.
func (s *GameService) Delete(ctx context.Context, gameID string, callerID int64) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game.HostID != callerID {
		return model.ErrNotGameHost
	}

	// Snapshot the requesters before the cascade wipes their rows.
	requesterIDs, err := s.joinRepo.ListRequesterIDsByGame(ctx, gameID)
	if err != nil {
		return err
	}

	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return err
	}

	for _, requesterID := range requesterIDs {
		event := queue.NewGameCancelledEvent(game.ID, game.Sport, game.Location, game.HostID, requesterID)
		if _, err := s.publisher.Publish(ctx, queue.StreamGames, event); err != nil {
			log.Printf("[Game] publish cancel event failed: game=%s recipient=%d err=%v", game.ID, requesterID, err)
		}
	}

	return nil
}

// Counts returns the totals for the liveness endpoint.
func (s *GameService) Counts(ctx context.Context) (totalGames, totalUsers int, err error) {
	totalGames, err = s.gameRepo.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	totalUsers, err = s.userRepo.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return totalGames, totalUsers, nil
}

// annotate attaches derived accepted-join counts to games with one grouped
// query instead of one count per game.
func (s *GameService) annotate(ctx context.Context, games []model.Game) ([]model.GameView, error) {
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}

	counts, err := s.gameRepo.CountAcceptedBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.GameView, len(games))
	for i, g := range games {
		views[i] = model.GameView{Game: g, PlayersJoined: counts[g.ID]}
	}
	return views, nil
}

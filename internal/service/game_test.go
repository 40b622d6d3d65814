package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"promptplay-api/internal/model"
	"promptplay-api/internal/queue"
)

// =============================================================================
// SHARED MOCKS (game, publisher)
// =============================================================================

type mockGameRepository struct {
	createFn            func(ctx context.Context, game *model.Game) error
	getByIDFn           func(ctx context.Context, id string) (*model.Game, error)
	getForUpdateFn      func(ctx context.Context, tx *sqlx.Tx, id string) (*model.Game, error)
	listAllFn           func(ctx context.Context) ([]model.Game, error)
	listOpenFn          func(ctx context.Context) ([]model.Game, error)
	listByHostFn        func(ctx context.Context, hostID int64) ([]model.Game, error)
	updateStatusFn      func(ctx context.Context, tx *sqlx.Tx, id, status string) error
	deleteFn            func(ctx context.Context, id string) error
	countFn             func(ctx context.Context) (int, error)
	countAcceptedTxFn   func(ctx context.Context, tx *sqlx.Tx, gameID string) (int, error)
	countAcceptedBulkFn func(ctx context.Context, gameIDs []string) (map[string]int, error)

	createCalls []string
	deleteCalls []string
}

func (m *mockGameRepository) Create(ctx context.Context, game *model.Game) error {
	m.createCalls = append(m.createCalls, game.ID)
	if m.createFn != nil {
		return m.createFn(ctx, game)
	}
	return nil
}

func (m *mockGameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrGameNotFound
}

func (m *mockGameRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Game, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, model.ErrGameNotFound
}

func (m *mockGameRepository) ListAll(ctx context.Context) ([]model.Game, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockGameRepository) ListOpen(ctx context.Context) ([]model.Game, error) {
	if m.listOpenFn != nil {
		return m.listOpenFn(ctx)
	}
	return nil, nil
}

func (m *mockGameRepository) ListByHost(ctx context.Context, hostID int64) ([]model.Game, error) {
	if m.listByHostFn != nil {
		return m.listByHostFn(ctx, hostID)
	}
	return nil, nil
}

func (m *mockGameRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id, status string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, tx, id, status)
	}
	return nil
}

func (m *mockGameRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockGameRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockGameRepository) CountAcceptedTx(ctx context.Context, tx *sqlx.Tx, gameID string) (int, error) {
	if m.countAcceptedTxFn != nil {
		return m.countAcceptedTxFn(ctx, tx, gameID)
	}
	return 0, nil
}

func (m *mockGameRepository) CountAcceptedBulk(ctx context.Context, gameIDs []string) (map[string]int, error) {
	if m.countAcceptedBulkFn != nil {
		return m.countAcceptedBulkFn(ctx, gameIDs)
	}
	return map[string]int{}, nil
}

type mockJoinRequestRepository struct {
	createFn                 func(ctx context.Context, jr *model.JoinRequest) error
	getByIDFn                func(ctx context.Context, id int64) (*model.JoinRequest, error)
	existsForUserFn          func(ctx context.Context, gameID string, userID int64) (bool, error)
	listByGameFn             func(ctx context.Context, gameID string) ([]model.JoinRequest, error)
	listAcceptedByUserFn     func(ctx context.Context, userID int64) ([]model.JoinRequest, error)
	listRequesterIDsByGameFn func(ctx context.Context, gameID string) ([]int64, error)
	updateStatusFn           func(ctx context.Context, tx *sqlx.Tx, id int64, status string) error

	createCalls []*model.JoinRequest
}

func (m *mockJoinRequestRepository) Create(ctx context.Context, jr *model.JoinRequest) error {
	m.createCalls = append(m.createCalls, jr)
	if m.createFn != nil {
		return m.createFn(ctx, jr)
	}
	return nil
}

func (m *mockJoinRequestRepository) GetByID(ctx context.Context, id int64) (*model.JoinRequest, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrJoinRequestNotFound
}

func (m *mockJoinRequestRepository) ExistsForUser(ctx context.Context, gameID string, userID int64) (bool, error) {
	if m.existsForUserFn != nil {
		return m.existsForUserFn(ctx, gameID, userID)
	}
	return false, nil
}

func (m *mockJoinRequestRepository) ListByGame(ctx context.Context, gameID string) ([]model.JoinRequest, error) {
	if m.listByGameFn != nil {
		return m.listByGameFn(ctx, gameID)
	}
	return nil, nil
}

func (m *mockJoinRequestRepository) ListAcceptedByUser(ctx context.Context, userID int64) ([]model.JoinRequest, error) {
	if m.listAcceptedByUserFn != nil {
		return m.listAcceptedByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockJoinRequestRepository) ListRequesterIDsByGame(ctx context.Context, gameID string) ([]int64, error) {
	if m.listRequesterIDsByGameFn != nil {
		return m.listRequesterIDsByGameFn(ctx, gameID)
	}
	return nil, nil
}

func (m *mockJoinRequestRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id int64, status string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, tx, id, status)
	}
	return nil
}

// mockPublisher records events instead of touching Redis.
type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.GameEvent) (string, error)

	events []queue.GameEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.GameEvent) (string, error) {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// =============================================================================
// CREATE FROM PROMPT TESTS
// =============================================================================

func newTestGameService(gameRepo *mockGameRepository, joinRepo *mockJoinRequestRepository, llm ChatCompleter, pub *mockPublisher) *GameService {
	return NewGameService(gameRepo, joinRepo, &mockUserRepository{}, NewExtractionService(llm), pub)
}

func TestGameService_CreateFromPrompt_Success(t *testing.T) {
	gameRepo := &mockGameRepository{}
	llm := &mockCompleter{replies: []string{
		`{"sport": "tennis", "location": "The Meadows", "datetime_utc": "2025-06-16T16:00:00Z", "players_needed": 2}`,
	}}
	svc := newTestGameService(gameRepo, &mockJoinRequestRepository{}, llm, &mockPublisher{})

	view, needsInfo, err := svc.CreateFromPrompt(context.Background(), 7, "hostuser", "tennis tomorrow 4pm, need 2")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if needsInfo != nil {
		t.Fatalf("expected no needsInfo, got %+v", needsInfo)
	}

	if view.ID == "" {
		t.Error("expected a generated game ID")
	}
	if view.HostID != 7 {
		t.Errorf("host_id = %d, want 7", view.HostID)
	}
	if view.HostUsername != "hostuser" {
		t.Errorf("host_username = %q, want %q", view.HostUsername, "hostuser")
	}
	if view.OriginalPrompt != "tennis tomorrow 4pm, need 2" {
		t.Errorf("original_prompt = %q, want the verbatim prompt", view.OriginalPrompt)
	}
	if view.Status != model.GameStatusOpen {
		t.Errorf("status = %q, want %q", view.Status, model.GameStatusOpen)
	}
	if view.PlayersJoined != 0 {
		t.Errorf("players_joined = %d, want 0 for a fresh game", view.PlayersJoined)
	}

	if len(gameRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(gameRepo.createCalls))
	}
}

func TestGameService_CreateFromPrompt_MissingFieldsPersistsNothing(t *testing.T) {
	gameRepo := &mockGameRepository{}
	llm := &mockCompleter{replies: []string{
		`{"sport": "tennis", "location": null, "datetime_utc": null, "players_needed": null}`,
	}}
	svc := newTestGameService(gameRepo, &mockJoinRequestRepository{}, llm, &mockPublisher{})

	view, needsInfo, err := svc.CreateFromPrompt(context.Background(), 7, "hostuser", "tennis")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if view != nil {
		t.Error("no game should be returned when fields are missing")
	}
	if needsInfo == nil {
		t.Fatal("expected needsInfo, got nil")
	}
	if len(gameRepo.createCalls) != 0 {
		t.Error("nothing should be persisted when fields are missing")
	}
}

func TestGameService_CreateFromPrompt_NegativePlayersNeeded(t *testing.T) {
	gameRepo := &mockGameRepository{}
	llm := &mockCompleter{replies: []string{
		`{"sport": "tennis", "location": "The Meadows", "datetime_utc": "2025-06-16T16:00:00Z", "players_needed": -1}`,
	}}
	svc := newTestGameService(gameRepo, &mockJoinRequestRepository{}, llm, &mockPublisher{})

	_, _, err := svc.CreateFromPrompt(context.Background(), 7, "hostuser", "tennis tomorrow")

	if !errors.Is(err, model.ErrNoPlayersNeeded) {
		t.Errorf("error = %v, want %v", err, model.ErrNoPlayersNeeded)
	}
	if len(gameRepo.createCalls) != 0 {
		t.Error("nothing should be persisted for a non-positive player count")
	}
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestGameService_ListAll_AnnotatesJoinCounts(t *testing.T) {
	games := []model.Game{
		{ID: "g1", Status: model.GameStatusOpen, PlayersNeeded: 2},
		{ID: "g2", Status: model.GameStatusFull, PlayersNeeded: 1},
	}
	gameRepo := &mockGameRepository{
		listAllFn: func(ctx context.Context) ([]model.Game, error) {
			return games, nil
		},
		countAcceptedBulkFn: func(ctx context.Context, gameIDs []string) (map[string]int, error) {
			return map[string]int{"g2": 1}, nil
		},
	}
	svc := newTestGameService(gameRepo, &mockJoinRequestRepository{}, &mockCompleter{}, &mockPublisher{})

	views, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].PlayersJoined != 0 {
		t.Errorf("g1 players_joined = %d, want 0", views[0].PlayersJoined)
	}
	if views[1].PlayersJoined != 1 {
		t.Errorf("g2 players_joined = %d, want 1", views[1].PlayersJoined)
	}
}

func TestGameService_ListJoinedBy_SkipsVanishedGames(t *testing.T) {
	joinRepo := &mockJoinRequestRepository{
		listAcceptedByUserFn: func(ctx context.Context, userID int64) ([]model.JoinRequest, error) {
			return []model.JoinRequest{
				{ID: 1, GameID: "alive", UserID: userID, Status: model.JoinStatusAccepted},
				{ID: 2, GameID: "deleted", UserID: userID, Status: model.JoinStatusAccepted},
			}, nil
		},
	}
	gameRepo := &mockGameRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Game, error) {
			if id == "alive" {
				return &model.Game{ID: "alive", Status: model.GameStatusOpen}, nil
			}
			return nil, model.ErrGameNotFound
		},
	}
	svc := newTestGameService(gameRepo, joinRepo, &mockCompleter{}, &mockPublisher{})

	views, err := svc.ListJoinedBy(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(views) != 1 || views[0].ID != "alive" {
		t.Errorf("views = %+v, want the single surviving game", views)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestGameService_Delete_NotHost(t *testing.T) {
	gameRepo := &mockGameRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Game, error) {
			return &model.Game{ID: id, HostID: 1}, nil
		},
	}
	svc := newTestGameService(gameRepo, &mockJoinRequestRepository{}, &mockCompleter{}, &mockPublisher{})

	err := svc.Delete(context.Background(), "g1", 2)

	if !errors.Is(err, model.ErrNotGameHost) {
		t.Errorf("error = %v, want %v", err, model.ErrNotGameHost)
	}
	if len(gameRepo.deleteCalls) != 0 {
		t.Error("Delete should not reach the repository for a non-host caller")
	}
}

func TestGameService_Delete_NotFound(t *testing.T) {
	svc := newTestGameService(&mockGameRepository{}, &mockJoinRequestRepository{}, &mockCompleter{}, &mockPublisher{})

	err := svc.Delete(context.Background(), "missing", 1)

	if !errors.Is(err, model.ErrGameNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrGameNotFound)
	}
}

func TestGameService_Delete_NotifiesEveryRequester(t *testing.T) {
	gameRepo := &mockGameRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Game, error) {
			return &model.Game{ID: id, HostID: 1, Sport: "tennis", Location: "The Meadows"}, nil
		},
	}
	joinRepo := &mockJoinRequestRepository{
		listRequesterIDsByGameFn: func(ctx context.Context, gameID string) ([]int64, error) {
			return []int64{10, 11, 12}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestGameService(gameRepo, joinRepo, &mockCompleter{}, pub)

	if err := svc.Delete(context.Background(), "g1", 1); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(gameRepo.deleteCalls) != 1 {
		t.Errorf("Delete called %d times, want 1", len(gameRepo.deleteCalls))
	}
	if len(pub.events) != 3 {
		t.Fatalf("published %d events, want 3", len(pub.events))
	}
	for i, recipient := range []int64{10, 11, 12} {
		ev := pub.events[i]
		if ev.Type != queue.EventGameCancelled {
			t.Errorf("event[%d].Type = %q, want %q", i, ev.Type, queue.EventGameCancelled)
		}
		if ev.RecipientID != recipient {
			t.Errorf("event[%d].RecipientID = %d, want %d", i, ev.RecipientID, recipient)
		}
		if ev.Sport != "tennis" {
			t.Errorf("event[%d] should snapshot the sport", i)
		}
	}
}

func TestGameService_Delete_PublishFailureIsNonFatal(t *testing.T) {
	gameRepo := &mockGameRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Game, error) {
			return &model.Game{ID: id, HostID: 1}, nil
		},
	}
	joinRepo := &mockJoinRequestRepository{
		listRequesterIDsByGameFn: func(ctx context.Context, gameID string) ([]int64, error) {
			return []int64{10}, nil
		},
	}
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, stream string, event queue.GameEvent) (string, error) {
			return "", errors.New("redis down")
		},
	}
	svc := newTestGameService(gameRepo, joinRepo, &mockCompleter{}, pub)

	// The delete already happened; a broken notification pipeline must not
	// surface as an API error.
	if err := svc.Delete(context.Background(), "g1", 1); err != nil {
		t.Errorf("expected no error despite publish failure, got: %v", err)
	}
}

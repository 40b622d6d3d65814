package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"promptplay-api/internal/model"
)

func openGame(id, sport string) model.Game {
	return model.Game{
		ID:            id,
		Sport:         sport,
		Location:      "The Meadows",
		DatetimeUTC:   time.Date(2025, 6, 16, 16, 0, 0, 0, time.UTC),
		PlayersNeeded: 2,
		Status:        model.GameStatusOpen,
	}
}

func TestMatchService_FindMatches_SortedByScoreDescending(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("low", "tennis"), openGame("high", "tennis"), openGame("mid", "tennis")}, nil
		},
	}
	// One scripted reply per open game, in encounter order
	llm := &mockCompleter{replies: []string{
		`{"is_match": true, "compatibility_score": 40, "reason": "same sport, far away"}`,
		`{"is_match": true, "compatibility_score": 95, "reason": "same sport, place and time"}`,
		`{"is_match": true, "compatibility_score": 70, "reason": "same sport, close time"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis tomorrow 4pm")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	wantOrder := []string{"high", "mid", "low"}
	for i, id := range wantOrder {
		if matches[i].GameRequest.ID != id {
			t.Errorf("matches[%d] = %q, want %q", i, matches[i].GameRequest.ID, id)
		}
	}
	if matches[0].CompatibilityScore != 95 {
		t.Errorf("top score = %d, want 95", matches[0].CompatibilityScore)
	}

	// Matching runs at its own temperature
	for i, call := range llm.calls {
		if call.Temperature != 0.5 {
			t.Errorf("call %d temperature = %v, want 0.5", i, call.Temperature)
		}
	}
}

func TestMatchService_FindMatches_TiesKeepEncounterOrder(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("first", "tennis"), openGame("second", "tennis")}, nil
		},
	}
	llm := &mockCompleter{replies: []string{
		`{"is_match": true, "compatibility_score": 80, "reason": "ok"}`,
		`{"is_match": true, "compatibility_score": 80, "reason": "ok"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].GameRequest.ID != "first" || matches[1].GameRequest.ID != "second" {
		t.Errorf("tied scores should keep encounter order, got %q then %q",
			matches[0].GameRequest.ID, matches[1].GameRequest.ID)
	}
}

func TestMatchService_FindMatches_FiltersNonMatches(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("yes", "tennis"), openGame("no", "chess")}, nil
		},
	}
	llm := &mockCompleter{replies: []string{
		`{"is_match": true, "compatibility_score": 90, "reason": "same sport"}`,
		`{"is_match": false, "compatibility_score": 5, "reason": "different sport"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(matches) != 1 || matches[0].GameRequest.ID != "yes" {
		t.Errorf("matches = %+v, want only the is_match game", matches)
	}
}

func TestMatchService_FindMatches_MalformedReplySkipsCandidate(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("broken", "tennis"), openGame("good", "tennis")}, nil
		},
	}
	llm := &mockCompleter{replies: []string{
		`I think these would match great!`, // not JSON, candidate dropped
		`{"is_match": true, "compatibility_score": 85, "reason": "solid"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("a malformed reply must not fail the whole call, got: %v", err)
	}
	if len(matches) != 1 || matches[0].GameRequest.ID != "good" {
		t.Errorf("matches = %+v, want only the well-formed candidate", matches)
	}
}

func TestMatchService_FindMatches_MissingFieldSkipsCandidate(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("incomplete", "tennis")}, nil
		},
	}
	llm := &mockCompleter{replies: []string{
		`{"is_match": true, "reason": "forgot the score"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want none for a reply missing required fields", matches)
	}
}

func TestMatchService_FindMatches_ScoreOutOfRangeSkipsCandidate(t *testing.T) {
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return []model.Game{openGame("overeager", "tennis")}, nil
		},
	}
	llm := &mockCompleter{replies: []string{
		`{"is_match": true, "compatibility_score": 150, "reason": "off the charts"}`,
	}}
	svc := NewMatchService(llm, gameRepo)

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want none for an out-of-range score", matches)
	}
}

func TestMatchService_FindMatches_NoOpenGames(t *testing.T) {
	llm := &mockCompleter{}
	svc := NewMatchService(llm, &mockGameRepository{})

	matches, err := svc.FindMatches(context.Background(), "tennis")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if matches == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want empty", matches)
	}
	if len(llm.calls) != 0 {
		t.Error("no LLM calls should be made when there are no open games")
	}
}

func TestMatchService_FindMatches_ListOpenError(t *testing.T) {
	dbErr := errors.New("db down")
	gameRepo := &mockGameRepository{
		listOpenFn: func(ctx context.Context) ([]model.Game, error) {
			return nil, dbErr
		},
	}
	svc := NewMatchService(&mockCompleter{}, gameRepo)

	_, err := svc.FindMatches(context.Background(), "tennis")
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, should wrap the repository error", err)
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"promptplay-api/internal/model"
	"promptplay-api/internal/repository"
)

// MatchService scores a free-text prompt against every open game with one
// LLM call per candidate.
type MatchService struct {
	llm      ChatCompleter
	gameRepo repository.GameRepository
}

func NewMatchService(llm ChatCompleter, gameRepo repository.GameRepository) *MatchService {
	return &MatchService{
		llm:      llm,
		gameRepo: gameRepo,
	}
}

const matchingSystemMessage = `You are a matching assistant that determines if two game requests are compatible.
Consider factors like:
- Same or compatible sport
- Similar location (nearby areas are OK)
- Compatible timing (similar dates/times, allow some flexibility)
- Overall intent and context

Respond ONLY with valid JSON in this exact format:
{
    "is_match": true or false,
    "compatibility_score": number from 0-100,
    "reason": "brief explanation"
}

Do not include any explanation or markdown formatting.`

// matchReply is the only shape the matching adapter accepts. Pointer fields
// let us reject replies that omit a required field.
type matchReply struct {
	IsMatch            *bool   `json:"is_match"`
	CompatibilityScore *int    `json:"compatibility_score"`
	Reason             *string `json:"reason"`
}

// FindMatches runs the prompt against all open games. A malformed or failed
// reply for a candidate drops that candidate silently - the matching path is
// deliberately non-fatal per candidate. Results contain only is_match games,
// sorted by compatibility score descending; ties keep encounter order.
func (s *MatchService) FindMatches(ctx context.Context, prompt string) ([]model.MatchResult, error) {
	openGames, err := s.gameRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open games: %w", err)
	}
	if len(openGames) == 0 {
		return []model.MatchResult{}, nil
	}

	gameIDs := make([]string, len(openGames))
	for i, g := range openGames {
		gameIDs[i] = g.ID
	}
	counts, err := s.gameRepo.CountAcceptedBulk(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted joins: %w", err)
	}

	matches := make([]model.MatchResult, 0, len(openGames))
	for _, game := range openGames {
		userMessage := fmt.Sprintf(`New request: %q

Existing post: %q
Sport: %s
Location: %s
Time: %s
Players needed: %d

Are these a good match?`,
			prompt, game.OriginalPrompt, game.Sport, game.Location,
			game.DatetimeUTC.Format("2006-01-02 15:04:05"), game.PlayersNeeded)

		reply, err := s.llm.Complete(ctx, matchingSystemMessage, userMessage, 0.5)
		if err != nil {
			log.Printf("[Match] candidate %s skipped: llm call failed: %v", game.ID, err)
			continue
		}

		parsed, err := parseMatchReply(reply)
		if err != nil {
			log.Printf("[Match] candidate %s skipped: %v", game.ID, err)
			continue
		}

		if !*parsed.IsMatch {
			continue
		}

		matches = append(matches, model.MatchResult{
			GameRequest: model.GameView{
				Game:          game,
				PlayersJoined: counts[game.ID],
			},
			IsMatch:            true,
			CompatibilityScore: *parsed.CompatibilityScore,
			Reason:             *parsed.Reason,
		})
	}

	// Stable sort keeps encounter order on tied scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CompatibilityScore > matches[j].CompatibilityScore
	})

	return matches, nil
}

// parseMatchReply enforces the reply contract: a single JSON object carrying
// exactly is_match, compatibility_score and reason.
func parseMatchReply(reply string) (*matchReply, error) {
	dec := json.NewDecoder(strings.NewReader(reply))
	dec.DisallowUnknownFields()

	var parsed matchReply
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("reply is not the required JSON object: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("reply contains trailing data after the JSON object")
	}

	if parsed.IsMatch == nil || parsed.CompatibilityScore == nil || parsed.Reason == nil {
		return nil, fmt.Errorf("reply is missing required fields")
	}
	if *parsed.CompatibilityScore < 0 || *parsed.CompatibilityScore > 100 {
		return nil, fmt.Errorf("compatibility_score %d out of range", *parsed.CompatibilityScore)
	}

	return &parsed, nil
}

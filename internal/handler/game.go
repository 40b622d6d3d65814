package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"promptplay-api/internal/httputil"
	"promptplay-api/internal/model"
	"promptplay-api/internal/service"
	"promptplay-api/internal/transport/http/middleware"
)

// GameHandler groups game-request endpoints and their dependencies.
type GameHandler struct {
	gameService  *service.GameService
	matchService *service.MatchService
}

func NewGameHandler(gameService *service.GameService, matchService *service.MatchService) *GameHandler {
	return &GameHandler{
		gameService:  gameService,
		matchService: matchService,
	}
}

// Root handles the liveness endpoint
// GET /
func (h *GameHandler) Root(w http.ResponseWriter, r *http.Request) {
	totalGames, totalUsers, err := h.gameService.Counts(r.Context())
	if err != nil {
		log.Printf("[ERROR] Root handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load counts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "PromptPlay API is running",
		"total_requests": totalGames,
		"total_users":    totalUsers,
	})
}

// ListAll returns every game with its derived accepted-join count
// GET /requests
func (h *GameHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.ListAll(r.Context())
	if err != nil {
		log.Printf("[ERROR] ListAll handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list games")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, games)
}

// Create runs the prompt through the extraction adapter and persists a game
// POST /create-request
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	username, _ := middleware.GetUsernameFromContext(r.Context())

	var req model.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		httputil.WriteBadRequest(w, "Prompt is required")
		return
	}

	game, needsInfo, err := h.gameService.CreateFromPrompt(r.Context(), userID, username, req.Prompt)
	if err != nil {
		var upstream *service.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("[ERROR] Create game extraction: user=%d err=%v", userID, err)
			httputil.WriteUpstreamError(w, upstream.Error())
			return
		}
		if errors.Is(err, model.ErrNoPlayersNeeded) {
			httputil.WriteBadRequest(w, "players_needed must be greater than zero")
			return
		}
		log.Printf("[ERROR] Create game handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to create game")
		return
	}

	// Missing fields are a normal outcome: tell the caller what to add.
	if needsInfo != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, needsInfo)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, game)
}

// FindMatch scores the prompt against all open games
// POST /find-match
func (h *GameHandler) FindMatch(w http.ResponseWriter, r *http.Request) {
	var req model.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		httputil.WriteBadRequest(w, "Prompt is required")
		return
	}

	matches, err := h.matchService.FindMatches(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("[ERROR] FindMatch handler: %v", err)
		httputil.WriteInternalError(w, "Failed to find matches")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, matches)
}

// MyHosted lists the caller's games
// GET /my-games/hosted
func (h *GameHandler) MyHosted(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	games, err := h.gameService.ListHostedBy(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] MyHosted handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list hosted games")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, games)
}

// MyJoined lists the games where the caller holds an accepted join request
// GET /my-games/joined
func (h *GameHandler) MyJoined(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	games, err := h.gameService.ListJoinedBy(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] MyJoined handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list joined games")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, games)
}

// Delete removes a game the caller hosts
// DELETE /requests/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	gameID := chi.URLParam(r, "id")

	err := h.gameService.Delete(r.Context(), gameID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			httputil.WriteNotFound(w, "Request not found")
		case errors.Is(err, model.ErrNotGameHost):
			httputil.WriteForbidden(w, "Only the host can delete this game")
		default:
			log.Printf("[ERROR] Delete game handler: user=%d game=%s err=%v", userID, gameID, err)
			httputil.WriteInternalError(w, "Failed to delete game")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Request deleted successfully",
	})
}

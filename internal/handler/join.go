package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"promptplay-api/internal/httputil"
	"promptplay-api/internal/model"
	"promptplay-api/internal/service"
	"promptplay-api/internal/transport/http/middleware"
)

// JoinHandler groups join-request endpoints and their dependencies.
type JoinHandler struct {
	joinService *service.JoinService
}

func NewJoinHandler(joinService *service.JoinService) *JoinHandler {
	return &JoinHandler{joinService: joinService}
}

// Join creates a pending join request on an open game
// POST /games/{id}/join
func (h *JoinHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	username, _ := middleware.GetUsernameFromContext(r.Context())

	gameID := chi.URLParam(r, "id")

	// The body is optional: a bare join carries no description.
	var req model.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	jr, err := h.joinService.Join(r.Context(), gameID, userID, username, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			httputil.WriteNotFound(w, "Game not found")
		case errors.Is(err, model.ErrGameNotOpen):
			httputil.WriteBadRequest(w, "Game is not open for joining")
		case errors.Is(err, model.ErrOwnGame):
			httputil.WriteBadRequest(w, "You cannot join your own game")
		case errors.Is(err, model.ErrAlreadyRequested):
			httputil.WriteBadRequest(w, "You have already requested to join this game")
		default:
			log.Printf("[ERROR] Join handler: user=%d game=%s err=%v", userID, gameID, err)
			httputil.WriteInternalError(w, "Failed to create join request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, jr)
}

// ListForGame lists all join requests on a game, host only
// GET /games/{id}/join-requests
func (h *JoinHandler) ListForGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	gameID := chi.URLParam(r, "id")

	requests, err := h.joinService.ListForGame(r.Context(), gameID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			httputil.WriteNotFound(w, "Game not found")
		case errors.Is(err, model.ErrNotGameHost):
			httputil.WriteForbidden(w, "Only the host can view join requests")
		default:
			log.Printf("[ERROR] ListForGame handler: user=%d game=%s err=%v", userID, gameID, err)
			httputil.WriteInternalError(w, "Failed to list join requests")
		}
		return
	}

	if requests == nil {
		requests = []model.JoinRequest{}
	}
	httputil.WriteJSON(w, http.StatusOK, requests)
}

// Decide accepts or rejects a pending join request, host only
// PUT /join-requests/{id}
func (h *JoinHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	idStr := chi.URLParam(r, "id")
	joinRequestID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid join request ID")
		return
	}

	var req model.DecideJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	jr, err := h.joinService.Decide(r.Context(), joinRequestID, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidJoinStatus):
			httputil.WriteBadRequest(w, "Status must be 'accepted' or 'rejected'")
		case errors.Is(err, model.ErrJoinRequestNotFound):
			httputil.WriteNotFound(w, "Join request not found")
		case errors.Is(err, model.ErrGameNotFound):
			httputil.WriteNotFound(w, "Game not found")
		case errors.Is(err, model.ErrNotGameHost):
			httputil.WriteForbidden(w, "Only the host can accept/reject join requests")
		case errors.Is(err, model.ErrAlreadyDecided):
			httputil.WriteBadRequest(w, "Join request already decided")
		default:
			log.Printf("[ERROR] Decide handler: user=%d request=%d err=%v", userID, joinRequestID, err)
			httputil.WriteInternalError(w, "Failed to update join request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, jr)
}

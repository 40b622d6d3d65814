package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"promptplay-api/internal/httputil"
	"promptplay-api/internal/model"
	"promptplay-api/internal/service"
	"promptplay-api/internal/transport/http/middleware"
)

// AuthHandler groups account and token endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles account creation, including guest accounts
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameRequired):
			httputil.WriteBadRequest(w, "Username is required")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteBadRequest(w, "Username already exists")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteBadRequest(w, "Email already exists")
		default:
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	h.writeTokenResponse(w, http.StatusCreated, user)
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	h.writeTokenResponse(w, http.StatusOK, user)
}

// Guest handles one-click guest login with an auto-generated username
// POST /auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.CreateGuest(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to create guest account")
		return
	}

	h.writeTokenResponse(w, http.StatusCreated, user)
}

// Me returns the currently authenticated user
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) writeTokenResponse(w http.ResponseWriter, status int, user *model.User) {
	accessToken, err := h.authService.IssueToken(user.ID, user.Username)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to generate token")
		return
	}

	httputil.WriteJSON(w, status, model.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        user,
	})
}

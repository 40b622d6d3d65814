package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"promptplay-api/internal/handler"
	"promptplay-api/internal/httputil"
	authmw "promptplay-api/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	GameHandler         *handler.GameHandler
	JoinHandler         *handler.JoinHandler
	NotificationHandler *handler.NotificationHandler
	TokenDecoder        authmw.TokenDecoder
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Get("/", cfg.GameHandler.Root)
	r.Get("/requests", cfg.GameHandler.ListAll)
	r.Post("/find-match", cfg.GameHandler.FindMatch)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/guest", cfg.AuthHandler.Guest)
		r.With(authmw.AuthMiddleware(cfg.TokenDecoder)).Get("/me", cfg.AuthHandler.Me)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.TokenDecoder))

		r.Post("/create-request", cfg.GameHandler.Create)
		r.Delete("/requests/{id}", cfg.GameHandler.Delete)

		r.Post("/games/{id}/join", cfg.JoinHandler.Join)
		r.Get("/games/{id}/join-requests", cfg.JoinHandler.ListForGame)
		r.Put("/join-requests/{id}", cfg.JoinHandler.Decide)

		r.Get("/my-games/hosted", cfg.GameHandler.MyHosted)
		r.Get("/my-games/joined", cfg.GameHandler.MyJoined)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Post("/read", cfg.NotificationHandler.MarkRead)
		})
	})

	return r
}

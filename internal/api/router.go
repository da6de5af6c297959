package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
	"github.com/musyaffa-iman/EchoShift/internal/api/handler"
	"github.com/musyaffa-iman/EchoShift/internal/api/middleware"
	httpmw "github.com/musyaffa-iman/EchoShift/internal/middleware"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
)

// RateLimitConfig bounds how fast one client IP may register or log in.
// A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	RunService  *runs.Service
	Storage     handler.Pinger
	RateLimit   RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	runHandler := handler.NewRunHandler(cfg.RunService)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Logger)

	// Credential endpoints share one limiter
	limit := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimit.RPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
		limit = func(h http.HandlerFunc) http.Handler { return limiter.Middleware()(h) }
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	api.Use(httpmw.RequestID())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(httpmw.Logging(cfg.Logger))
	api.Use(middleware.SessionToken())

	// Player routes
	api.Handle("/players", limit(playerHandler.Register)).Methods(http.MethodPost)
	api.Handle("/players/login", limit(playerHandler.Login)).Methods(http.MethodPost)
	api.HandleFunc("/players/logout", playerHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/players/session/validate", playerHandler.ValidateSession).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Delete).Methods(http.MethodDelete)

	// Run routes
	api.HandleFunc("/runs", runHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/runs/{playerId}", runHandler.ListForPlayer).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", runHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/runs/{id}/end", runHandler.End).Methods(http.MethodPatch)
	api.HandleFunc("/runs/{id}", runHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError("Resource not found"))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}

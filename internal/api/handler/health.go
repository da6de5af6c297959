package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
	"github.com/musyaffa-iman/EchoShift/internal/api/response"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything that can report whether its backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	storage Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, logger: logger}
}

// Get handles GET /api/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Error("storage health check failed", slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.NewUnavailableError("Storage unavailable"))
		return
	}

	response.Success(w, http.StatusOK, "Service is healthy", response.Health{Status: "ok", Storage: "ok"})
}

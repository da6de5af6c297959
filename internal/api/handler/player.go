package handler

import (
	"net/http"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
	"github.com/musyaffa-iman/EchoShift/internal/api/middleware"
	"github.com/musyaffa-iman/EchoShift/internal/api/request"
	"github.com/musyaffa-iman/EchoShift/internal/api/response"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
)

// PlayerHandler handles player and session endpoints
type PlayerHandler struct {
	authService *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
	}
}

// Register handles POST /api/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("creating player", err))
		return
	}

	response.Success(w, http.StatusCreated, "Player created and logged in successfully", response.AuthResponseFromSession(session))
}

// Login handles POST /api/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("during login", err))
		return
	}

	response.Success(w, http.StatusOK, "Login successful", response.AuthResponseFromSession(session))
}

// Logout handles POST /api/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		apierr.WriteError(w, apierr.WithOperation("during logout", err))
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// ValidateSession handles GET /api/players/session/validate
func (h *PlayerHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.authService.ValidateSession(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("during session validation", err))
		return
	}

	response.Success(w, http.StatusOK, "Session is valid", response.PlayerFromModel(&session.Player))
}

// Delete handles DELETE /api/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if err := h.authService.DeletePlayer(r.Context(), id); err != nil {
		apierr.WriteError(w, apierr.WithOperation("deleting player", err))
		return
	}

	response.Success(w, http.StatusOK, "Player deleted successfully", "deleted")
}

package handler

import (
	"net/http"

	"github.com/musyaffa-iman/EchoShift/internal/api/apierr"
	"github.com/musyaffa-iman/EchoShift/internal/api/middleware"
	"github.com/musyaffa-iman/EchoShift/internal/api/request"
	"github.com/musyaffa-iman/EchoShift/internal/api/response"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
)

// RunHandler handles run endpoints
type RunHandler struct {
	runService *runs.Service
}

// NewRunHandler creates a new run handler
func NewRunHandler(runService *runs.Service) *RunHandler {
	return &RunHandler{
		runService: runService,
	}
}

// ListForPlayer handles GET /api/runs/{playerId}
func (h *RunHandler) ListForPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathUUID(r, "playerId")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	list, err := h.runService.ListRunsForPlayer(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("retrieving player runs", err))
		return
	}

	response.Success(w, http.StatusOK, "Player runs retrieved successfully", response.RunsFromModel(list))
}

// Create handles POST /api/runs
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.RunRequest
	if err := request.DecodeOptional(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	run, err := h.runService.CreateRun(r.Context(), middleware.GetToken(r.Context()), req.Patch())
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("creating run", err))
		return
	}

	response.Success(w, http.StatusCreated, "Run created successfully", response.RunFromModel(run))
}

// Update handles PUT /api/runs/{id}
func (h *RunHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var req request.RunRequest
	if err := request.DecodeOptional(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	run, err := h.runService.UpdateRun(r.Context(), id, middleware.GetToken(r.Context()), req.Patch())
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("updating run", err))
		return
	}

	response.Success(w, http.StatusOK, "Run updated successfully", response.RunFromModel(run))
}

// End handles PATCH /api/runs/{id}/end
func (h *RunHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var req request.RunRequest
	if err := request.DecodeOptional(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	run, err := h.runService.EndRun(r.Context(), id, middleware.GetToken(r.Context()), req.Patch())
	if err != nil {
		apierr.WriteError(w, apierr.WithOperation("ending run", err))
		return
	}

	response.Success(w, http.StatusOK, "Run completed successfully", response.RunFromModel(run))
}

// Delete handles DELETE /api/runs/{id}
func (h *RunHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if err := h.runService.DeleteRun(r.Context(), id, middleware.GetToken(r.Context())); err != nil {
		apierr.WriteError(w, apierr.WithOperation("deleting run", err))
		return
	}

	response.Success(w, http.StatusOK, "Run deleted successfully", nil)
}

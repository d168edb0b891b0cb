package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/dto"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{Base: NewBase(repo)}
}

// List handles GET /api/runs - returns recent reconciliation runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunResponse(*run))
}

func toRunResponse(run storage.ReconcileRun) dto.RunResponse {
	return dto.RunResponse{
		ID:              run.ID,
		AccountKey:      run.AccountKey,
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
		RuleMatches:     run.RuleMatches,
		ExternalMatches: run.ExternalMatches,
		NewMatches:      run.NewMatches,
		Status:          run.Status,
		ErrorMessage:    run.ErrorMessage,
	}
}

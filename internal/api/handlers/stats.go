package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/dto"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// StatsHandler serves per-account reconciliation statistics.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{Base: NewBase(repo)}
}

// Get handles GET /api/accounts/{account}/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	stats, err := h.repo.GetAccountStats(account)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		AccountKey:      stats.AccountKey,
		TotalBank:       stats.TotalBank,
		TotalLedger:     stats.TotalLedger,
		TotalMatched:    stats.TotalMatched,
		RuleMatches:     stats.RuleMatches,
		ExternalMatches: stats.ExternalMatches,
		UnmatchedBank:   stats.UnmatchedBank,
		UnmatchedLedger: stats.UnmatchedLedger,
	})
}

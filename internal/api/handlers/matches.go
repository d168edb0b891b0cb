package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/dto"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// MatchesHandler serves persisted matches.
type MatchesHandler struct {
	*Base
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(repo storage.Repository) *MatchesHandler {
	return &MatchesHandler{Base: NewBase(repo)}
}

// List handles GET /api/accounts/{account}/matches.
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	matches, err := h.repo.ListMatches(account)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.MatchListResponse{
		Matches: make([]dto.MatchResponse, 0, len(matches)),
		Count:   len(matches),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, dto.FromMatch(m))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

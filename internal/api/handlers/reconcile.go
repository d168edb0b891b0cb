package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/dto"
	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
	"github.com/mirchez/transaction-reconciler-sub001/internal/application/service"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// ReconcileHandler triggers reconciliation runs.
type ReconcileHandler struct {
	*Base
	service *service.ReconcileService
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(repo storage.Repository, svc *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    NewBase(repo),
		service: svc,
	}
}

// Run handles POST /api/accounts/{account}/reconcile.
//
// Missing input data maps to 422 with a distinct code per side so callers
// can prompt the user to import the right thing. Anything else is a 500.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	summary, err := h.service.Reconcile(r.Context(), account)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrNoLedgerData):
			h.WriteError(w, http.StatusUnprocessableEntity,
				dto.NewAPIError(dto.ErrCodeNoLedgerData, err.Error()))
		case errors.Is(err, reconcile.ErrNoBankData):
			h.WriteError(w, http.StatusUnprocessableEntity,
				dto.NewAPIError(dto.ErrCodeNoBankData, err.Error()))
		default:
			h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.FromSummary(summary))
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/dto"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// RecordsHandler handles ingestion of bank and ledger records and account
// reset. Ingestion normally belongs to upstream collaborators (statement
// and receipt parsers); this is their boundary into the engine.
type RecordsHandler struct {
	*Base
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(repo storage.Repository) *RecordsHandler {
	return &RecordsHandler{Base: NewBase(repo)}
}

// IngestBank handles POST /api/accounts/{account}/bank-transactions.
func (h *RecordsHandler) IngestBank(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	var req dto.IngestBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if len(req.Transactions) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transactions must not be empty"))
		return
	}

	txs := make([]storage.BankTransaction, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		if t.ID == "" {
			h.WriteError(w, http.StatusBadRequest,
				dto.NewAPIError(dto.ErrCodeValidation, "every bank transaction needs an id"))
			return
		}
		bt := storage.BankTransaction{
			ID:          t.ID,
			AccountKey:  account,
			Amount:      t.Amount,
			Description: t.Description,
		}
		if t.Date != nil {
			// An unparseable date degrades to unknown instead of rejecting
			// the batch; the matcher skips date comparison for the record.
			if d, err := time.Parse("2006-01-02", *t.Date); err == nil {
				bt.Date = &d
			}
		}
		txs = append(txs, bt)
	}

	inserted, err := h.repo.SaveBankTransactions(txs)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.IngestResponse{Received: len(txs), Inserted: inserted})
}

// IngestLedger handles POST /api/accounts/{account}/ledger-entries.
func (h *RecordsHandler) IngestLedger(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	var req dto.IngestLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if len(req.Entries) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("entries must not be empty"))
		return
	}

	entries := make([]storage.LedgerEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		if e.ID == "" || e.Vendor == "" {
			h.WriteError(w, http.StatusBadRequest,
				dto.NewAPIError(dto.ErrCodeValidation, "every ledger entry needs an id and vendor"))
			return
		}
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest,
				dto.NewAPIError(dto.ErrCodeValidation, "ledger entry "+e.ID+" has an invalid date"))
			return
		}
		entries = append(entries, storage.LedgerEntry{
			ID:         e.ID,
			AccountKey: account,
			Date:       d,
			Amount:     e.Amount,
			Vendor:     e.Vendor,
			Category:   e.Category,
		})
	}

	inserted, err := h.repo.SaveLedgerEntries(entries)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.IngestResponse{Received: len(entries), Inserted: inserted})
}

// Reset handles DELETE /api/accounts/{account} - removes all account data.
func (h *RecordsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("account is required"))
		return
	}

	if err := h.repo.ResetAccount(account); err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

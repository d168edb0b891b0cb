package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// IngestResponse reports how many records a batch ingest actually inserted.
// Re-posting the same batch inserts zero (ingested rows are immutable).
type IngestResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}

// ReconcileSummaryResponse mirrors the run summary for API consumers.
type ReconcileSummaryResponse struct {
	AccountKey      string          `json:"account_key"`
	NewMatches      int             `json:"new_matches"`
	RuleMatches     int             `json:"rule_matches"`
	ExternalMatches int             `json:"external_matches"`
	TotalMatched    int             `json:"total_matched"`
	TotalLedger     int             `json:"total_ledger"`
	TotalBank       int             `json:"total_bank"`
	UnmatchedLedger int             `json:"unmatched_ledger"`
	UnmatchedBank   int             `json:"unmatched_bank"`
	Matches         []MatchResponse `json:"matches"`
}

// MatchResponse is the denormalized match view.
type MatchResponse struct {
	ID                string          `json:"id,omitempty"`
	LedgerEntryID     string          `json:"ledger_entry_id"`
	BankTransactionID string          `json:"bank_transaction_id"`
	MatchScore        int             `json:"match_score"`
	Source            string          `json:"source"`
	Reasoning         string          `json:"reasoning,omitempty"`
	LedgerDescription string          `json:"ledger_description"`
	BankDescription   string          `json:"bank_description"`
	Amount            decimal.Decimal `json:"amount"`
	LedgerDate        string          `json:"ledger_date"`
	BankDate          string          `json:"bank_date,omitempty"`
	CreatedAt         string          `json:"created_at,omitempty"`
}

// MatchListResponse wraps a match listing.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// StatsResponse reports per-account aggregate state.
type StatsResponse struct {
	AccountKey      string `json:"account_key"`
	TotalBank       int    `json:"total_bank"`
	TotalLedger     int    `json:"total_ledger"`
	TotalMatched    int    `json:"total_matched"`
	RuleMatches     int    `json:"rule_matches"`
	ExternalMatches int    `json:"external_matches"`
	UnmatchedBank   int    `json:"unmatched_bank"`
	UnmatchedLedger int    `json:"unmatched_ledger"`
}

// RunResponse is one reconciliation run record.
type RunResponse struct {
	ID              int64  `json:"id"`
	AccountKey      string `json:"account_key"`
	StartedAt       string `json:"started_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
	RuleMatches     int    `json:"rule_matches"`
	ExternalMatches int    `json:"external_matches"`
	NewMatches      int    `json:"new_matches"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// RunListResponse wraps a run listing.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// FromSummary converts a run summary to its response form.
func FromSummary(s *reconcile.Summary) ReconcileSummaryResponse {
	resp := ReconcileSummaryResponse{
		AccountKey:      s.AccountKey,
		NewMatches:      s.NewMatches,
		RuleMatches:     s.RuleMatches,
		ExternalMatches: s.ExternalMatches,
		TotalMatched:    s.TotalMatched,
		TotalLedger:     s.TotalLedger,
		TotalBank:       s.TotalBank,
		UnmatchedLedger: s.UnmatchedLedger,
		UnmatchedBank:   s.UnmatchedBank,
		Matches:         make([]MatchResponse, 0, len(s.Matches)),
	}
	for _, d := range s.Matches {
		resp.Matches = append(resp.Matches, MatchResponse{
			LedgerEntryID:     d.LedgerID,
			BankTransactionID: d.BankID,
			MatchScore:        d.MatchScore,
			Source:            string(d.Source),
			Reasoning:         d.Reasoning,
			LedgerDescription: d.LedgerDescription,
			BankDescription:   d.BankDescription,
			Amount:            d.Amount,
			LedgerDate:        d.LedgerDate,
			BankDate:          d.BankDate,
		})
	}
	return resp
}

// FromMatch converts a stored match to its response form.
func FromMatch(m storage.Match) MatchResponse {
	return MatchResponse{
		ID:                m.ID,
		LedgerEntryID:     m.LedgerEntryID,
		BankTransactionID: m.BankTransactionID,
		MatchScore:        m.MatchScore,
		Source:            string(m.Source),
		Reasoning:         m.Reasoning,
		LedgerDescription: m.LedgerDescription,
		BankDescription:   m.BankDescription,
		Amount:            m.Amount,
		LedgerDate:        m.LedgerDate,
		BankDate:          m.BankDate,
		CreatedAt:         m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

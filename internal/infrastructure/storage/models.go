package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchSource identifies how a match was produced.
type MatchSource string

const (
	// MatchSourceRule marks pairs accepted by the deterministic rule matcher.
	MatchSourceRule MatchSource = "rule"
	// MatchSourceExternal marks pairs accepted via an external scoring provider.
	MatchSourceExternal MatchSource = "external"
)

// BankTransaction is a record ingested from a bank statement import.
// Date, Amount and Description are nullable because statement parsing can
// degrade; the engine treats missing fields as "unknown" rather than
// defaulting them. Rows are immutable once ingested.
type BankTransaction struct {
	ID          string           `json:"id"`
	AccountKey  string           `json:"account_key"`
	Date        *time.Time       `json:"date,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// LedgerEntry is a record ingested from receipts or invoices. Unlike bank
// transactions, ledger entries always carry a date, amount and vendor.
type LedgerEntry struct {
	ID         string          `json:"id"`
	AccountKey string          `json:"account_key"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Vendor     string          `json:"vendor"`
	Category   string          `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Match links one ledger entry to one bank transaction. Rows are created
// exclusively by the reconciler and never mutated afterwards. Display fields
// are denormalized so downstream consumers do not need to re-join.
type Match struct {
	ID                string          `json:"id"`
	AccountKey        string          `json:"account_key"`
	LedgerEntryID     string          `json:"ledger_entry_id"`
	BankTransactionID string          `json:"bank_transaction_id"`
	MatchScore        int             `json:"match_score"` // 0-100
	Source            MatchSource     `json:"source"`
	Reasoning         string          `json:"reasoning,omitempty"`
	LedgerDescription string          `json:"ledger_description"`
	BankDescription   string          `json:"bank_description"`
	Amount            decimal.Decimal `json:"amount"`
	LedgerDate        string          `json:"ledger_date"`
	BankDate          string          `json:"bank_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ReconcileRun records one reconciliation run for audit and the /runs API.
type ReconcileRun struct {
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

// AccountStats aggregates per-account reconciliation state.
type AccountStats struct {
	AccountKey      string `json:"account_key"`
	TotalBank       int    `json:"total_bank"`
	TotalLedger     int    `json:"total_ledger"`
	TotalMatched    int    `json:"total_matched"`
	RuleMatches     int    `json:"rule_matches"`
	ExternalMatches int    `json:"external_matches"`
	UnmatchedBank   int    `json:"unmatched_bank"`
	UnmatchedLedger int    `json:"unmatched_ledger"`
}

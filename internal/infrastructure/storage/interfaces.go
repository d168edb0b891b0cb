package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	BankTransactionRepository
	LedgerEntryRepository
	MatchRepository
	RunRepository

	// ResetAccount deletes all data for an account. Matches are removed
	// before the bank and ledger rows they reference.
	ResetAccount(accountKey string) error

	Close() error
}

// BankTransactionRepository handles bank statement records. Writes come from
// the ingestion collaborator; the reconciliation engine only reads.
type BankTransactionRepository interface {
	// SaveBankTransactions inserts new bank transactions, skipping IDs that
	// already exist (ingested rows are immutable).
	SaveBankTransactions(txs []BankTransaction) (int, error)

	// ListBankTransactions returns every bank transaction for an account.
	ListBankTransactions(accountKey string) ([]BankTransaction, error)
}

// LedgerEntryRepository handles receipt/invoice records.
type LedgerEntryRepository interface {
	// SaveLedgerEntries inserts new ledger entries, skipping IDs that
	// already exist.
	SaveLedgerEntries(entries []LedgerEntry) (int, error)

	// ListLedgerEntries returns every ledger entry for an account.
	ListLedgerEntries(accountKey string) ([]LedgerEntry, error)
}

// MatchRepository handles reconciliation results. Matches are additive only:
// there is no update or single-row delete.
type MatchRepository interface {
	// SaveMatches persists a batch of accepted matches atomically.
	SaveMatches(matches []Match) error

	// ListMatches returns all matches for an account, newest first.
	ListMatches(accountKey string) ([]Match, error)

	// GetAccountStats returns aggregate reconciliation statistics.
	GetAccountStats(accountKey string) (*AccountStats, error)
}

// RunRepository tracks reconciliation run history.
type RunRepository interface {
	// StartRun records the start of a run and returns the run ID.
	StartRun(accountKey string) (int64, error)

	// CompleteRun records a successful run with its match counts.
	CompleteRun(runID int64, ruleMatches, externalMatches, newMatches int) error

	// FailRun marks a run as failed with the error message.
	FailRun(runID int64, errMsg string) error

	// ListRuns returns recent runs, newest first.
	ListRuns(limit int) ([]ReconcileRun, error)

	// GetRun retrieves a run by ID, or nil if not found.
	GetRun(runID int64) (*ReconcileRun, error)
}

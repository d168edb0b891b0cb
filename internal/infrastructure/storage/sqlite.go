package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// dayFormat is the day-granularity date encoding used throughout the schema.
const dayFormat = "2006-01-02"

// Storage provides SQLite database access for reconciliation data.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveBankTransactions inserts bank transactions, skipping existing IDs.
// Returns the number of rows actually inserted.
func (s *Storage) SaveBankTransactions(txs []BankTransaction) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, bt := range txs {
		var date, amount, desc sql.NullString
		if bt.Date != nil {
			date = sql.NullString{String: bt.Date.Format(dayFormat), Valid: true}
		}
		if bt.Amount != nil {
			amount = sql.NullString{String: bt.Amount.String(), Valid: true}
		}
		if bt.Description != nil {
			desc = sql.NullString{String: *bt.Description, Valid: true}
		}

		res, err := tx.Exec(`
		INSERT OR IGNORE INTO bank_transactions (id, account_key, date, amount, description)
		VALUES (?, ?, ?, ?, ?)`,
			bt.ID, bt.AccountKey, date, amount, desc)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to save bank transaction %s: %w", bt.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	return inserted, tx.Commit()
}

// ListBankTransactions returns all bank transactions for an account.
func (s *Storage) ListBankTransactions(accountKey string) ([]BankTransaction, error) {
	rows, err := s.db.Query(`
	SELECT id, account_key, date, amount, description, created_at
	FROM bank_transactions WHERE account_key = ? ORDER BY date, id`, accountKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []BankTransaction
	for rows.Next() {
		var bt BankTransaction
		var date, amount, desc sql.NullString
		if err := rows.Scan(&bt.ID, &bt.AccountKey, &date, &amount, &desc, &bt.CreatedAt); err != nil {
			return nil, err
		}
		if date.Valid {
			if d, err := time.Parse(dayFormat, date.String); err == nil {
				bt.Date = &d
			}
		}
		if amount.Valid {
			if a, err := decimal.NewFromString(amount.String); err == nil {
				bt.Amount = &a
			}
		}
		if desc.Valid {
			bt.Description = &desc.String
		}
		txs = append(txs, bt)
	}
	return txs, rows.Err()
}

// SaveLedgerEntries inserts ledger entries, skipping existing IDs.
// Returns the number of rows actually inserted.
func (s *Storage) SaveLedgerEntries(entries []LedgerEntry) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, le := range entries {
		res, err := tx.Exec(`
		INSERT OR IGNORE INTO ledger_entries (id, account_key, date, amount, vendor, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
			le.ID, le.AccountKey, le.Date.Format(dayFormat), le.Amount.String(), le.Vendor, le.Category)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to save ledger entry %s: %w", le.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	return inserted, tx.Commit()
}

// ListLedgerEntries returns all ledger entries for an account.
func (s *Storage) ListLedgerEntries(accountKey string) ([]LedgerEntry, error) {
	rows, err := s.db.Query(`
	SELECT id, account_key, date, amount, vendor, category, created_at
	FROM ledger_entries WHERE account_key = ? ORDER BY date, id`, accountKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []LedgerEntry
	for rows.Next() {
		var le LedgerEntry
		var date, amount string
		if err := rows.Scan(&le.ID, &le.AccountKey, &date, &amount, &le.Vendor, &le.Category, &le.CreatedAt); err != nil {
			return nil, err
		}
		d, err := time.Parse(dayFormat, date)
		if err != nil {
			return nil, fmt.Errorf("corrupt date on ledger entry %s: %w", le.ID, err)
		}
		le.Date = d
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount on ledger entry %s: %w", le.ID, err)
		}
		le.Amount = a
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

// SaveMatches persists a batch of matches in a single transaction. The batch
// either commits as a whole or not at all, so a failed run never leaves a
// half-written result. Inserts are plain (not OR IGNORE): a constraint
// violation here means the caller broke the one-to-one invariant and the
// error must surface.
func (s *Storage) SaveMatches(matches []Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	for _, m := range matches {
		_, err := tx.Exec(`
		INSERT INTO matches
		(id, account_key, ledger_entry_id, bank_transaction_id, match_score, source,
		 reasoning, ledger_description, bank_description, amount, ledger_date, bank_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.AccountKey, m.LedgerEntryID, m.BankTransactionID, m.MatchScore, string(m.Source),
			m.Reasoning, m.LedgerDescription, m.BankDescription, m.Amount.String(), m.LedgerDate, m.BankDate, m.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save match %s/%s: %w", m.LedgerEntryID, m.BankTransactionID, err)
		}
	}

	return tx.Commit()
}

// ListMatches returns all matches for an account, newest first.
func (s *Storage) ListMatches(accountKey string) ([]Match, error) {
	rows, err := s.db.Query(`
	SELECT id, account_key, ledger_entry_id, bank_transaction_id, match_score, source,
	       reasoning, ledger_description, bank_description, amount, ledger_date, bank_date, created_at
	FROM matches WHERE account_key = ? ORDER BY created_at DESC, id`, accountKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []Match
	for rows.Next() {
		var m Match
		var source, amount string
		if err := rows.Scan(&m.ID, &m.AccountKey, &m.LedgerEntryID, &m.BankTransactionID, &m.MatchScore, &source,
			&m.Reasoning, &m.LedgerDescription, &m.BankDescription, &amount, &m.LedgerDate, &m.BankDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Source = MatchSource(source)
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount on match %s: %w", m.ID, err)
		}
		m.Amount = a
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetAccountStats returns aggregate reconciliation statistics for an account.
func (s *Storage) GetAccountStats(accountKey string) (*AccountStats, error) {
	stats := &AccountStats{AccountKey: accountKey}

	err := s.db.QueryRow(`SELECT COUNT(*) FROM bank_transactions WHERE account_key = ?`, accountKey).
		Scan(&stats.TotalBank)
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_key = ?`, accountKey).
		Scan(&stats.TotalLedger)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
	SELECT
		COUNT(*),
		COUNT(CASE WHEN source = 'rule' THEN 1 END),
		COUNT(CASE WHEN source = 'external' THEN 1 END)
	FROM matches WHERE account_key = ?`, accountKey).
		Scan(&stats.TotalMatched, &stats.RuleMatches, &stats.ExternalMatches)
	if err != nil {
		return nil, err
	}

	// Derived counts hold because matches are one-to-one on both sides.
	stats.UnmatchedBank = stats.TotalBank - stats.TotalMatched
	stats.UnmatchedLedger = stats.TotalLedger - stats.TotalMatched
	return stats, nil
}

// StartRun records the start of a reconciliation run.
func (s *Storage) StartRun(accountKey string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO reconcile_runs (account_key, status) VALUES (?, 'running')`, accountKey)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteRun marks a run as completed with its match counts.
func (s *Storage) CompleteRun(runID int64, ruleMatches, externalMatches, newMatches int) error {
	_, err := s.db.Exec(`
	UPDATE reconcile_runs
	SET completed_at = CURRENT_TIMESTAMP, rule_matches = ?, external_matches = ?,
	    new_matches = ?, status = 'completed'
	WHERE id = ?`, ruleMatches, externalMatches, newMatches, runID)
	return err
}

// FailRun marks a run as failed.
func (s *Storage) FailRun(runID int64, errMsg string) error {
	_, err := s.db.Exec(`
	UPDATE reconcile_runs
	SET completed_at = CURRENT_TIMESTAMP, status = 'failed', error_message = ?
	WHERE id = ?`, errMsg, runID)
	return err
}

// ListRuns returns recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]ReconcileRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
	SELECT id, account_key, started_at, COALESCE(completed_at, ''), rule_matches,
	       external_matches, new_matches, status, error_message
	FROM reconcile_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ReconcileRun
	for rows.Next() {
		var r ReconcileRun
		if err := rows.Scan(&r.ID, &r.AccountKey, &r.StartedAt, &r.CompletedAt, &r.RuleMatches,
			&r.ExternalMatches, &r.NewMatches, &r.Status, &r.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by ID, or nil if it does not exist.
func (s *Storage) GetRun(runID int64) (*ReconcileRun, error) {
	var r ReconcileRun
	err := s.db.QueryRow(`
	SELECT id, account_key, started_at, COALESCE(completed_at, ''), rule_matches,
	       external_matches, new_matches, status, error_message
	FROM reconcile_runs WHERE id = ?`, runID).
		Scan(&r.ID, &r.AccountKey, &r.StartedAt, &r.CompletedAt, &r.RuleMatches,
			&r.ExternalMatches, &r.NewMatches, &r.Status, &r.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ResetAccount deletes all rows for an account. Matches go first so the
// foreign key references stay valid throughout.
func (s *Storage) ResetAccount(accountKey string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM matches WHERE account_key = ?`,
		`DELETE FROM bank_transactions WHERE account_key = ?`,
		`DELETE FROM ledger_entries WHERE account_key = ?`,
	} {
		if _, err := tx.Exec(stmt, accountKey); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to reset account %s: %w", accountKey, err)
		}
	}

	return tx.Commit()
}

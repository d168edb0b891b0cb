package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_records_schema",
		Up:      migration001InitialRecordsSchema,
	},
	{
		Version: 2,
		Name:    "add_matches_table",
		Up:      migration002AddMatchesTable,
	},
	{
		Version: 3,
		Name:    "add_reconcile_runs_table",
		Up:      migration003AddReconcileRunsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (s *Storage) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// migration001InitialRecordsSchema creates the ingested record tables.
// Dates are stored at day granularity (YYYY-MM-DD) and amounts as decimal
// strings so no precision is lost round-tripping through SQLite.
func migration001InitialRecordsSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS bank_transactions (
		id TEXT PRIMARY KEY,
		account_key TEXT NOT NULL,
		date TEXT,
		amount TEXT,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		account_key TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		vendor TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_bank_account ON bank_transactions(account_key)`); err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_key)`)
	return err
}

// migration002AddMatchesTable creates the matches table. The unique indexes
// are the database-level backstop for the one-to-one invariant: a ledger
// entry or bank transaction can appear in at most one match.
func migration002AddMatchesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		account_key TEXT NOT NULL,
		ledger_entry_id TEXT NOT NULL REFERENCES ledger_entries(id),
		bank_transaction_id TEXT NOT NULL REFERENCES bank_transactions(id),
		match_score INTEGER NOT NULL CHECK (match_score BETWEEN 0 AND 100),
		source TEXT NOT NULL CHECK (source IN ('rule', 'external')),
		reasoning TEXT NOT NULL DEFAULT '',
		ledger_description TEXT NOT NULL DEFAULT '',
		bank_description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		ledger_date TEXT NOT NULL DEFAULT '',
		bank_date TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_ledger ON matches(ledger_entry_id)`); err != nil {
		return err
	}
	if _, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_bank ON matches(bank_transaction_id)`); err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_matches_account ON matches(account_key)`)
	return err
}

func migration003AddReconcileRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS reconcile_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_key TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME,
		rule_matches INTEGER DEFAULT 0,
		external_matches INTEGER DEFAULT 0,
		new_matches INTEGER DEFAULT 0,
		status TEXT DEFAULT 'running',
		error_message TEXT DEFAULT ''
	)`)
	return err
}

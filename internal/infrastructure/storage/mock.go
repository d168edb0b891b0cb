package storage

import (
	"fmt"
	"sync"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu      sync.Mutex
	bank    map[string][]BankTransaction // keyed by account_key
	ledger  map[string][]LedgerEntry
	matches map[string][]Match
	runs    map[int64]*ReconcileRun
	nextRun int64

	// Hooks for test assertions
	SaveMatchesCalled bool
	LastSavedMatches  []Match

	// Error injection for testing error paths
	ListBankErr    error
	ListLedgerErr  error
	ListMatchesErr error
	SaveMatchesErr error
	StartRunErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		bank:    make(map[string][]BankTransaction),
		ledger:  make(map[string][]LedgerEntry),
		matches: make(map[string][]Match),
		runs:    make(map[int64]*ReconcileRun),
		nextRun: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveBankTransactions appends transactions, skipping duplicate IDs.
func (m *MockRepository) SaveBankTransactions(txs []BankTransaction) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, bt := range txs {
		if m.bankExists(bt.AccountKey, bt.ID) {
			continue
		}
		m.bank[bt.AccountKey] = append(m.bank[bt.AccountKey], bt)
		inserted++
	}
	return inserted, nil
}

// ListBankTransactions returns stored bank transactions for an account.
func (m *MockRepository) ListBankTransactions(accountKey string) ([]BankTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListBankErr != nil {
		return nil, m.ListBankErr
	}
	out := make([]BankTransaction, len(m.bank[accountKey]))
	copy(out, m.bank[accountKey])
	return out, nil
}

// SaveLedgerEntries appends entries, skipping duplicate IDs.
func (m *MockRepository) SaveLedgerEntries(entries []LedgerEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, le := range entries {
		if m.ledgerExists(le.AccountKey, le.ID) {
			continue
		}
		m.ledger[le.AccountKey] = append(m.ledger[le.AccountKey], le)
		inserted++
	}
	return inserted, nil
}

// ListLedgerEntries returns stored ledger entries for an account.
func (m *MockRepository) ListLedgerEntries(accountKey string) ([]LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListLedgerErr != nil {
		return nil, m.ListLedgerErr
	}
	out := make([]LedgerEntry, len(m.ledger[accountKey]))
	copy(out, m.ledger[accountKey])
	return out, nil
}

// SaveMatches appends matches, enforcing the same uniqueness the SQLite
// schema enforces so mock-backed tests catch invariant violations too.
func (m *MockRepository) SaveMatches(matches []Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveMatchesCalled = true
	m.LastSavedMatches = matches
	if m.SaveMatchesErr != nil {
		return m.SaveMatchesErr
	}

	for _, match := range matches {
		for _, existing := range m.matches[match.AccountKey] {
			if existing.LedgerEntryID == match.LedgerEntryID {
				return fmt.Errorf("ledger entry %s already matched", match.LedgerEntryID)
			}
			if existing.BankTransactionID == match.BankTransactionID {
				return fmt.Errorf("bank transaction %s already matched", match.BankTransactionID)
			}
		}
		m.matches[match.AccountKey] = append(m.matches[match.AccountKey], match)
	}
	return nil
}

// ListMatches returns stored matches for an account.
func (m *MockRepository) ListMatches(accountKey string) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListMatchesErr != nil {
		return nil, m.ListMatchesErr
	}
	out := make([]Match, len(m.matches[accountKey]))
	copy(out, m.matches[accountKey])
	return out, nil
}

// GetAccountStats computes stats from in-memory state.
func (m *MockRepository) GetAccountStats(accountKey string) (*AccountStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &AccountStats{
		AccountKey:  accountKey,
		TotalBank:   len(m.bank[accountKey]),
		TotalLedger: len(m.ledger[accountKey]),
	}
	for _, match := range m.matches[accountKey] {
		stats.TotalMatched++
		if match.Source == MatchSourceRule {
			stats.RuleMatches++
		} else {
			stats.ExternalMatches++
		}
	}
	stats.UnmatchedBank = stats.TotalBank - stats.TotalMatched
	stats.UnmatchedLedger = stats.TotalLedger - stats.TotalMatched
	return stats, nil
}

// StartRun records a new run.
func (m *MockRepository) StartRun(accountKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartRunErr != nil {
		return 0, m.StartRunErr
	}
	id := m.nextRun
	m.nextRun++
	m.runs[id] = &ReconcileRun{ID: id, AccountKey: accountKey, Status: "running"}
	return id, nil
}

// CompleteRun marks a run completed.
func (m *MockRepository) CompleteRun(runID int64, ruleMatches, externalMatches, newMatches int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %d not found", runID)
	}
	run.RuleMatches = ruleMatches
	run.ExternalMatches = externalMatches
	run.NewMatches = newMatches
	run.Status = "completed"
	return nil
}

// FailRun marks a run failed.
func (m *MockRepository) FailRun(runID int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %d not found", runID)
	}
	run.Status = "failed"
	run.ErrorMessage = errMsg
	return nil
}

// ListRuns returns recorded runs, newest first.
func (m *MockRepository) ListRuns(limit int) ([]ReconcileRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []ReconcileRun
	for id := m.nextRun - 1; id >= 1 && len(runs) < limit; id-- {
		if run, ok := m.runs[id]; ok {
			runs = append(runs, *run)
		}
	}
	return runs, nil
}

// GetRun retrieves a run by ID.
func (m *MockRepository) GetRun(runID int64) (*ReconcileRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

// ResetAccount removes all data for an account.
func (m *MockRepository) ResetAccount(accountKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.matches, accountKey)
	delete(m.bank, accountKey)
	delete(m.ledger, accountKey)
	return nil
}

func (m *MockRepository) bankExists(accountKey, id string) bool {
	for _, bt := range m.bank[accountKey] {
		if bt.ID == id {
			return true
		}
	}
	return false
}

func (m *MockRepository) ledgerExists(accountKey, id string) bool {
	for _, le := range m.ledger[accountKey] {
		if le.ID == id {
			return true
		}
	}
	return false
}

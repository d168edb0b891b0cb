package reconcile

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// State is a phase of a reconciliation run.
type State string

const (
	StateIdle            State = "idle"
	StateLoadingInputs   State = "loading_inputs"
	StateRuleMatching    State = "rule_matching"
	StateExternalScoring State = "external_scoring"
	StatePersisting      State = "persisting"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// DefaultAcceptThreshold is the minimum score (0-100) an external candidate
// needs to become a match.
const DefaultAcceptThreshold = 60

// Expected input-absence errors: user-actionable, not system failures.
var (
	ErrNoLedgerData = errors.New("no ledger entries found; import receipts or invoices before reconciling")
	ErrNoBankData   = errors.New("no bank transactions found; import a bank statement before reconciling")
)

// MatchDetail is the denormalized view of one accepted match, shaped for
// consumers that should not need to re-join the source records.
type MatchDetail struct {
	LedgerID          string          `json:"ledgerId"`
	BankID            string          `json:"bankId"`
	MatchScore        int             `json:"matchScore"`
	Source            storage.MatchSource `json:"source"`
	Reasoning         string          `json:"reasoning,omitempty"`
	LedgerDescription string          `json:"ledgerDescription"`
	BankDescription   string          `json:"bankDescription"`
	Amount            decimal.Decimal `json:"amount"`
	LedgerDate        string          `json:"ledgerDate"`
	BankDate          string          `json:"bankDate,omitempty"`
}

// Summary reports the outcome of one reconciliation run. Unmatched counts
// are derived (total minus matched), which is only meaningful because
// matches are one-to-one on both sides.
type Summary struct {
	AccountKey      string        `json:"accountKey"`
	NewMatches      int           `json:"newMatches"`
	RuleMatches     int           `json:"ruleMatches"`
	ExternalMatches int           `json:"externalMatches"`
	TotalMatched    int           `json:"totalMatched"`
	TotalLedger     int           `json:"totalLedger"`
	TotalBank       int           `json:"totalBank"`
	UnmatchedLedger int           `json:"unmatchedLedger"`
	UnmatchedBank   int           `json:"unmatchedBank"`
	SkippedLowScore int           `json:"skippedLowScore"`
	IntegritySkips  int           `json:"integritySkips"`
	Matches         []MatchDetail `json:"matches"`
}

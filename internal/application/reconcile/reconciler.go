// Package reconcile orchestrates a reconciliation run: load unmatched
// records, apply the deterministic rule matcher, fall back to an external
// scoring provider for the remainder, and persist accepted matches.
//
// A run moves through loading_inputs, rule_matching, external_scoring and
// persisting; any unrecoverable error sends it to failed. A failing scoring
// provider is recoverable: the run continues with rule matches only.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/matcher"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/registry"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
	"github.com/mirchez/transaction-reconciler-sub001/internal/scoring"
)

// Reconciler runs reconciliation for one account at a time. It is stateless
// across runs; all per-run state lives on the run value.
type Reconciler struct {
	repo      storage.Repository
	matcher   *matcher.Matcher
	scorer    scoring.Provider // nil when no scoring capability is configured
	threshold int
	logger    *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithScorer sets the external scoring provider.
func WithScorer(p scoring.Provider) Option {
	return func(r *Reconciler) { r.scorer = p }
}

// WithAcceptThreshold overrides the external acceptance threshold.
func WithAcceptThreshold(threshold int) Option {
	return func(r *Reconciler) { r.threshold = threshold }
}

// New creates a reconciler.
func New(repo storage.Repository, logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		repo:      repo,
		matcher:   matcher.New(),
		threshold: DefaultAcceptThreshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run carries the state of a single reconciliation run.
type run struct {
	accountKey string
	runID      int64
	state      State
	logger     *slog.Logger

	bank   []storage.BankTransaction
	ledger []storage.LedgerEntry
	reg    *registry.Registry

	normBank   []normalizer.Record
	normLedger []normalizer.Record
	bankByID   map[string]normalizer.Record
	ledgerByID map[string]normalizer.Record

	consumedBank   map[string]bool
	consumedLedger map[string]bool

	previouslyMatched int
	pending           []storage.Match
	details           []MatchDetail
	ruleMatches       int
	externalMatches   int
	skippedLowScore   int
	integritySkips    int
}

func (s *run) setState(next State) {
	s.logger.Debug("run state transition", "from", string(s.state), "to", string(next))
	s.state = next
}

// Reconcile executes one run for the given account and returns its summary.
//
// Input absence (no bank or no ledger data) is reported via ErrNoBankData /
// ErrNoLedgerData. Persistence failures are fatal. Scoring provider
// failures are not: the run degrades to rule matches only.
func (r *Reconciler) Reconcile(ctx context.Context, accountKey string) (*Summary, error) {
	s := &run{
		accountKey: accountKey,
		state:      StateIdle,
		logger:     r.logger.With("account", accountKey),
	}

	runID, err := r.repo.StartRun(accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	s.runID = runID
	s.logger = s.logger.With("run_id", runID)

	summary, err := r.execute(ctx, s)
	if err != nil {
		s.setState(StateFailed)
		_ = r.repo.FailRun(runID, err.Error())
		return nil, err
	}

	if err := r.repo.CompleteRun(runID, summary.RuleMatches, summary.ExternalMatches, summary.NewMatches); err != nil {
		s.logger.Warn("failed to record run completion", "error", err)
	}
	return summary, nil
}

func (r *Reconciler) execute(ctx context.Context, s *run) (*Summary, error) {
	if err := r.loadInputs(ctx, s); err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	r.ruleMatch(s)
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	r.externalScore(ctx, s)
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	// Once persisting begins the run goes to completion or fails whole;
	// SaveMatches is atomic so no half-written match can survive.
	s.setState(StatePersisting)
	if err := r.repo.SaveMatches(s.pending); err != nil {
		return nil, fmt.Errorf("failed to persist matches: %w", err)
	}

	s.setState(StateCompleted)
	summary := r.summarize(s)
	s.logger.Info("reconciliation completed",
		"new_matches", summary.NewMatches,
		"rule_matches", summary.RuleMatches,
		"external_matches", summary.ExternalMatches,
		"unmatched_bank", summary.UnmatchedBank,
		"unmatched_ledger", summary.UnmatchedLedger,
	)
	return summary, nil
}

// loadInputs loads both record collections and the matched-state registry.
// A completely empty side is a terminal-but-expected condition.
func (r *Reconciler) loadInputs(_ context.Context, s *run) error {
	s.setState(StateLoadingInputs)

	ledger, err := r.repo.ListLedgerEntries(s.accountKey)
	if err != nil {
		return fmt.Errorf("failed to load ledger entries: %w", err)
	}
	bank, err := r.repo.ListBankTransactions(s.accountKey)
	if err != nil {
		return fmt.Errorf("failed to load bank transactions: %w", err)
	}

	if len(ledger) == 0 {
		return ErrNoLedgerData
	}
	if len(bank) == 0 {
		return ErrNoBankData
	}

	existing, err := r.repo.ListMatches(s.accountKey)
	if err != nil {
		return fmt.Errorf("failed to load existing matches: %w", err)
	}

	s.ledger = ledger
	s.bank = bank
	s.reg = registry.NewFromMatches(existing)
	s.previouslyMatched = len(existing)

	// Normalize only the currently unmatched records; matched rows from
	// prior runs are settled and never reconsidered.
	s.bankByID = make(map[string]normalizer.Record)
	s.ledgerByID = make(map[string]normalizer.Record)
	for _, bt := range bank {
		if s.reg.IsBankMatched(bt.ID) {
			continue
		}
		rec := normalizer.NormalizeBank(bt)
		s.normBank = append(s.normBank, rec)
		s.bankByID[rec.ID] = rec
	}
	for _, le := range ledger {
		if s.reg.IsLedgerMatched(le.ID) {
			continue
		}
		rec := normalizer.NormalizeLedger(le)
		s.normLedger = append(s.normLedger, rec)
		s.ledgerByID[rec.ID] = rec
	}

	s.logger.Debug("inputs loaded",
		"total_bank", len(bank),
		"total_ledger", len(ledger),
		"unmatched_bank", len(s.normBank),
		"unmatched_ledger", len(s.normLedger),
		"previously_matched", s.previouslyMatched,
	)
	return nil
}

// ruleMatch runs the deterministic matcher and accepts every pair it
// produces at maximum confidence.
func (r *Reconciler) ruleMatch(s *run) {
	s.setState(StateRuleMatching)

	result := r.matcher.Match(s.normBank, s.normLedger, s.reg.PairKeys())
	// Consumed includes duplicate-suppressed records, which stay unpaired
	// but must not be offered to the scoring provider either.
	s.consumedBank = result.ConsumedBankIDs
	s.consumedLedger = result.ConsumedLedgerIDs
	for _, pair := range result.Pairs {
		if s.reg.IsBankMatched(pair.Bank.ID) || s.reg.IsLedgerMatched(pair.Ledger.ID) {
			s.integritySkips++
			continue
		}
		r.accept(s, pair.Ledger, pair.Bank, pair.Score, storage.MatchSourceRule,
			"amount, date and description all matched")
		s.ruleMatches++
	}

	s.logger.Debug("rule matching done",
		"pairs", s.ruleMatches,
		"consumed_bank", len(result.ConsumedBankIDs),
		"consumed_ledger", len(result.ConsumedLedgerIDs),
	)
}

// externalScore invokes the scoring provider on the unmatched remainder and
// filters its candidates through the acceptance threshold and the registry.
func (r *Reconciler) externalScore(ctx context.Context, s *run) {
	s.setState(StateExternalScoring)

	if r.scorer == nil {
		s.logger.Debug("no scoring provider configured, skipping external scoring")
		return
	}

	bankRemainder := remainder(s.normBank, s.consumedBank, s.reg.IsBankMatched)
	ledgerRemainder := remainder(s.normLedger, s.consumedLedger, s.reg.IsLedgerMatched)
	if len(bankRemainder) == 0 || len(ledgerRemainder) == 0 {
		s.logger.Debug("nothing left to score",
			"bank_remainder", len(bankRemainder), "ledger_remainder", len(ledgerRemainder))
		return
	}

	candidates, err := r.scorer.Score(ctx, bankRemainder, ledgerRemainder)
	if err != nil {
		// Recoverable: proceed with rule matches only.
		s.logger.Warn("scoring provider failed, continuing with rule matches only",
			"provider", r.scorer.Name(), "error", err)
		return
	}

	for _, c := range candidates {
		score := clamp(c.Score)
		if score < r.threshold {
			s.skippedLowScore++
			s.logger.Debug("candidate below acceptance threshold, discarded",
				"bank_id", c.BankID, "ledger_id", c.LedgerID,
				"score", score, "threshold", r.threshold)
			continue
		}

		// The provider knows nothing about consumption decisions made in
		// this run or prior ones; re-check everything before accepting.
		bank, bankOK := s.bankByID[c.BankID]
		ledger, ledgerOK := s.ledgerByID[c.LedgerID]
		if !bankOK || !ledgerOK {
			s.integritySkips++
			s.logger.Debug("candidate references unknown record, discarded",
				"bank_id", c.BankID, "ledger_id", c.LedgerID)
			continue
		}
		if s.reg.IsBankMatched(c.BankID) || s.reg.IsLedgerMatched(c.LedgerID) ||
			s.reg.PairSeen(c.LedgerID, c.BankID) {
			s.integritySkips++
			continue
		}

		r.accept(s, ledger, bank, score, storage.MatchSourceExternal, c.Reasoning)
		s.externalMatches++
	}

	s.logger.Debug("external scoring done",
		"provider", r.scorer.Name(),
		"candidates", len(candidates),
		"accepted", s.externalMatches,
		"below_threshold", s.skippedLowScore,
	)
}

// accept records a pairing in the registry and stages its match row.
func (r *Reconciler) accept(s *run, ledger, bank normalizer.Record, score int, source storage.MatchSource, reasoning string) {
	s.reg.Record(ledger.ID, bank.ID)

	s.pending = append(s.pending, storage.Match{
		ID:                uuid.NewString(),
		AccountKey:        s.accountKey,
		LedgerEntryID:     ledger.ID,
		BankTransactionID: bank.ID,
		MatchScore:        score,
		Source:            source,
		Reasoning:         reasoning,
		LedgerDescription: ledger.RawText,
		BankDescription:   bank.RawText,
		Amount:            ledger.Amount,
		LedgerDate:        ledger.DayString(),
		BankDate:          bank.DayString(),
		CreatedAt:         time.Now().UTC(),
	})
	s.details = append(s.details, MatchDetail{
		LedgerID:          ledger.ID,
		BankID:            bank.ID,
		MatchScore:        score,
		Source:            source,
		Reasoning:         reasoning,
		LedgerDescription: ledger.RawText,
		BankDescription:   bank.RawText,
		Amount:            ledger.Amount,
		LedgerDate:        ledger.DayString(),
		BankDate:          bank.DayString(),
	})
}

func (r *Reconciler) summarize(s *run) *Summary {
	newMatches := len(s.pending)
	totalMatched := s.previouslyMatched + newMatches
	return &Summary{
		AccountKey:      s.accountKey,
		NewMatches:      newMatches,
		RuleMatches:     s.ruleMatches,
		ExternalMatches: s.externalMatches,
		TotalMatched:    totalMatched,
		TotalLedger:     len(s.ledger),
		TotalBank:       len(s.bank),
		UnmatchedLedger: len(s.ledger) - totalMatched,
		UnmatchedBank:   len(s.bank) - totalMatched,
		SkippedLowScore: s.skippedLowScore,
		IntegritySkips:  s.integritySkips,
		Matches:         s.details,
	}
}

func remainder(records []normalizer.Record, consumed map[string]bool, isMatched func(string) bool) []normalizer.Record {
	var out []normalizer.Record
	for _, r := range records {
		if !consumed[r.ID] && !isMatched(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled: %w", err)
	}
	return nil
}

// Package scoring defines the external scoring capability the reconciler
// falls back to for records the rule matcher could not pair.
//
// Providers are optional and non-authoritative: the reconciler survives a
// failing provider, filters every candidate through its own acceptance
// threshold, and re-checks matched state before accepting anything.
package scoring

import (
	"context"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
)

// Candidate is a scored pairing proposal. Score is always on the 0-100
// scale; providers working in 0.0-1.0 must normalize before returning.
type Candidate struct {
	BankID    string
	LedgerID  string
	Score     int
	Reasoning string
}

// Provider scores possible pairings among the unmatched remainder of a run.
// Implementations are unaware of consumption decisions made elsewhere in
// the run, so callers must dedup against their own matched state.
type Provider interface {
	// Name identifies the provider in logs and run output.
	Name() string

	// Score proposes candidate pairs for the given remainders. Scoring is
	// performed once on the whole batch; it is the only blocking call in a
	// reconciliation run and honors ctx cancellation.
	Score(ctx context.Context, bank, ledger []normalizer.Record) ([]Candidate, error)
}

// ClampScore normalizes a provider score to the 0-100 integer scale.
// Values at or below 1.0 are treated as fractional confidences.
func ClampScore(raw float64) int {
	if raw <= 1.0 && raw >= 0 {
		raw *= 100
	}
	score := int(raw + 0.5)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

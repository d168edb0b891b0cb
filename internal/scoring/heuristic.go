package scoring

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/matcher"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
)

// tokenOverlapThreshold is the minimum share of description tokens that
// must agree for the description criterion to count.
const tokenOverlapThreshold = 0.3

// Criterion scores: 3, 2 or 1 of the independent criteria matched.
const (
	scoreThreeCriteria = 100
	scoreTwoCriteria   = 66
	scoreOneCriterion  = 33
)

// Heuristic is the built-in fallback scorer used when no external backend
// is configured or the configured one fails. For each bank record it
// evaluates three independent criteria against every not-yet-consumed
// ledger entry and keeps the single best-scoring candidate (best-fit,
// unlike the rule matcher's first-fit).
type Heuristic struct{}

// NewHeuristic creates the fallback scorer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name implements Provider.
func (h *Heuristic) Name() string { return "heuristic" }

// Score implements Provider. A strictly greater score replaces the current
// best candidate; on a tie the first found is kept. A ledger entry chosen
// for one bank record is not offered to later ones.
func (h *Heuristic) Score(ctx context.Context, bank, ledger []normalizer.Record) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	consumedLedger := make(map[string]bool)
	var candidates []Candidate

	for _, b := range bank {
		var best Candidate
		for _, l := range ledger {
			if consumedLedger[l.ID] {
				continue
			}
			score, reasoning := scorePair(b, l)
			if score > best.Score {
				best = Candidate{BankID: b.ID, LedgerID: l.ID, Score: score, Reasoning: reasoning}
			}
		}
		if best.Score > 0 {
			consumedLedger[best.LedgerID] = true
			candidates = append(candidates, best)
		}
	}

	return candidates, nil
}

// scorePair counts how many of the three criteria hold and maps the count
// to a confidence score.
func scorePair(b, l normalizer.Record) (int, string) {
	var reasons []string

	if matcher.AmountsWithinTolerance(b, l) {
		reasons = append(reasons, "amount within tolerance")
	}
	if normalizer.SameDay(b, l) {
		reasons = append(reasons, "same calendar day")
	}
	if tokenOverlap(b.Tokens, l.Tokens) >= tokenOverlapThreshold {
		reasons = append(reasons, "description overlap")
	}

	var score int
	switch len(reasons) {
	case 3:
		score = scoreThreeCriteria
	case 2:
		score = scoreTwoCriteria
	case 1:
		score = scoreOneCriterion
	default:
		return 0, ""
	}
	return score, strings.Join(reasons, "; ")
}

// tokenOverlap returns the share of tokens in the smaller description that
// have a counterpart in the other. Tokens count as equivalent when equal or,
// for longer words, within edit distance one — bank statements routinely
// truncate or mangle vendor names.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}

	shared := 0
	for _, s := range shorter {
		for _, l := range longer {
			if tokensEquivalent(s, l) {
				shared++
				break
			}
		}
	}
	return float64(shared) / float64(len(shorter))
}

func tokensEquivalent(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < 5 || len(b) < 5 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

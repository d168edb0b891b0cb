// Package matcher implements the deterministic reconciliation rules that
// pair bank transactions with ledger entries.
//
// The matcher is strict and explainable: a pair is accepted only when all
// three criteria hold:
//   - amounts differ by strictly less than 0.01
//   - both dates are known and fall on the same calendar day
//   - the descriptions share a meaningful word, or one contains the other
//
// Pairing is greedy first-fit in ascending date order rather than a globally
// optimal assignment. Exact triple-criterion agreement is rare enough that
// ambiguity is uncommon, and first-fit keeps runs reproducible.
package matcher

import (
	"sort"
	"strings"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/registry"
)

// Matcher pairs normalized bank and ledger records.
type Matcher struct{}

// New creates a rule matcher.
func New() *Matcher {
	return &Matcher{}
}

// Match greedily pairs bank transactions with ledger entries.
//
// Both inputs are scanned in ascending date order (records with unknown
// dates last). When a pair is accepted, every exact duplicate of either
// record — same amount, same day, same normalized description — is also
// consumed, so one real-world transaction appearing twice in a source can
// never produce two matches. Pairs whose key appears in alreadyMatched are
// skipped.
//
// Empty inputs are valid and produce an empty result.
func (m *Matcher) Match(bank, ledger []normalizer.Record, alreadyMatched map[string]bool) Result {
	sortedBank := sortByDay(bank)
	sortedLedger := sortByDay(ledger)

	result := Result{
		ConsumedBankIDs:   make(map[string]bool),
		ConsumedLedgerIDs: make(map[string]bool),
	}

	for _, b := range sortedBank {
		if result.ConsumedBankIDs[b.ID] {
			continue
		}
		for _, l := range sortedLedger {
			if result.ConsumedLedgerIDs[l.ID] {
				continue
			}
			if alreadyMatched[registry.PairKey(l.ID, b.ID)] {
				continue
			}
			if !criteriaMet(b, l) {
				continue
			}

			result.Pairs = append(result.Pairs, Pair{Bank: b, Ledger: l, Score: RuleMatchScore})
			result.ConsumedBankIDs[b.ID] = true
			result.ConsumedLedgerIDs[l.ID] = true
			consumeDuplicates(b, sortedBank, result.ConsumedBankIDs)
			consumeDuplicates(l, sortedLedger, result.ConsumedLedgerIDs)

			// First-fit: stop scanning ledger entries for this bank record.
			break
		}
	}

	return result
}

func criteriaMet(b, l normalizer.Record) bool {
	return AmountsWithinTolerance(b, l) && normalizer.SameDay(b, l) && DescriptionsSimilar(b, l)
}

// AmountsWithinTolerance reports whether both amounts are known and differ
// by strictly less than AmountTolerance.
func AmountsWithinTolerance(a, b normalizer.Record) bool {
	if !a.AmountKnown || !b.AmountKnown {
		return false
	}
	return a.Amount.Sub(b.Amount).Abs().Cmp(AmountTolerance) < 0
}

// DescriptionsSimilar applies the description overlap test: a word longer
// than minWordLength from either side that is a substring of (or contains)
// a word from the other side, or one whole normalized description contained
// in the other.
func DescriptionsSimilar(a, b normalizer.Record) bool {
	if a.Text != "" && b.Text != "" {
		if strings.Contains(a.Text, b.Text) || strings.Contains(b.Text, a.Text) {
			return true
		}
	}
	return wordsOverlap(a.Tokens, b.Tokens) || wordsOverlap(b.Tokens, a.Tokens)
}

// wordsOverlap checks words longer than minWordLength from the first token
// list against every word of the second, in both containment directions.
func wordsOverlap(words, others []string) bool {
	for _, w := range words {
		if len(w) <= minWordLength {
			continue
		}
		for _, o := range others {
			if strings.Contains(o, w) || strings.Contains(w, o) {
				return true
			}
		}
	}
	return false
}

// consumeDuplicates marks every exact duplicate of the matched record as
// consumed. Duplicate suppression is deliberate: the duplicate stays
// unmatched rather than pairing with a second counterpart.
func consumeDuplicates(matched normalizer.Record, records []normalizer.Record, consumed map[string]bool) {
	for _, r := range records {
		if r.ID == matched.ID || consumed[r.ID] {
			continue
		}
		if isExactDuplicate(matched, r) {
			consumed[r.ID] = true
		}
	}
}

func isExactDuplicate(a, b normalizer.Record) bool {
	if a.AmountKnown != b.AmountKnown || a.DayKnown != b.DayKnown {
		return false
	}
	if a.AmountKnown && !a.Amount.Equal(b.Amount) {
		return false
	}
	if a.DayKnown && !a.Day.Equal(b.Day) {
		return false
	}
	return a.Text == b.Text
}

// sortByDay returns a copy sorted ascending by day, records with unknown
// dates last. The sort is stable so equal-day records keep input order,
// which the greedy pass depends on for reproducibility.
func sortByDay(records []normalizer.Record) []normalizer.Record {
	out := make([]normalizer.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayKnown != out[j].DayKnown {
			return out[i].DayKnown
		}
		if !out[i].DayKnown {
			return false
		}
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

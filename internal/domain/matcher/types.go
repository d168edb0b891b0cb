package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
)

// AmountTolerance is the absolute tolerance for amount comparison. The
// comparison is strict: a difference of exactly one cent does not match.
var AmountTolerance = decimal.RequireFromString("0.01")

// RuleMatchScore is the score assigned to every rule match. A pair that
// satisfies amount, date and description jointly carries maximum confidence.
const RuleMatchScore = 100

// minWordLength is the minimum word length considered meaningful for the
// description overlap test. Shorter words ("inc", "the", "of") would make
// unrelated descriptions overlap.
const minWordLength = 3

// Pair is one accepted bank/ledger pairing.
type Pair struct {
	Bank   normalizer.Record
	Ledger normalizer.Record
	Score  int
}

// Result holds the outcome of one matching pass. Consumed sets include
// records suppressed as exact duplicates of a matched record, which is why
// they can be larger than the pair list.
type Result struct {
	Pairs             []Pair
	ConsumedBankIDs   map[string]bool
	ConsumedLedgerIDs map[string]bool
}

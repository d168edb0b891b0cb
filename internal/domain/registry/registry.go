// Package registry tracks which bank and ledger identifiers are already
// paired, combining durable matches from prior runs with pairs accepted
// earlier in the current run. The reconciler queries it between phases
// rather than trusting stale record lists.
package registry

import "github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"

// PairKey builds the opaque key identifying a (ledger, bank) pairing.
func PairKey(ledgerID, bankID string) string {
	return ledgerID + ":" + bankID
}

// Registry is the per-account matched-record index for a single run.
// It is not safe for concurrent use; a run owns its registry.
type Registry struct {
	matchedBank   map[string]bool
	matchedLedger map[string]bool
	pairs         map[string]bool
}

// NewFromMatches builds a registry seeded with persisted matches.
func NewFromMatches(matches []storage.Match) *Registry {
	r := &Registry{
		matchedBank:   make(map[string]bool, len(matches)),
		matchedLedger: make(map[string]bool, len(matches)),
		pairs:         make(map[string]bool, len(matches)),
	}
	for _, m := range matches {
		r.matchedBank[m.BankTransactionID] = true
		r.matchedLedger[m.LedgerEntryID] = true
		r.pairs[PairKey(m.LedgerEntryID, m.BankTransactionID)] = true
	}
	return r
}

// IsBankMatched reports whether a bank transaction is already paired.
func (r *Registry) IsBankMatched(bankID string) bool {
	return r.matchedBank[bankID]
}

// IsLedgerMatched reports whether a ledger entry is already paired.
func (r *Registry) IsLedgerMatched(ledgerID string) bool {
	return r.matchedLedger[ledgerID]
}

// PairSeen reports whether this exact pairing already exists.
func (r *Registry) PairSeen(ledgerID, bankID string) bool {
	return r.pairs[PairKey(ledgerID, bankID)]
}

// Record registers a newly accepted pairing.
func (r *Registry) Record(ledgerID, bankID string) {
	r.matchedLedger[ledgerID] = true
	r.matchedBank[bankID] = true
	r.pairs[PairKey(ledgerID, bankID)] = true
}

// PairKeys returns a copy of all known pair keys, for callers that apply
// their own pair-level dedup (the rule matcher does).
func (r *Registry) PairKeys() map[string]bool {
	out := make(map[string]bool, len(r.pairs))
	for k := range r.pairs {
		out[k] = true
	}
	return out
}

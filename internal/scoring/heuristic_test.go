package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
	"github.com/mirchez/transaction-reconciler-sub001/internal/scoring"
)

func bankRec(t *testing.T, id, day, amount, desc string) normalizer.Record {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	a := decimal.RequireFromString(amount)
	return normalizer.NormalizeBank(storage.BankTransaction{
		ID: id, Date: &d, Amount: &a, Description: &desc,
	})
}

func ledgerRec(t *testing.T, id, day, amount, vendor string) normalizer.Record {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return normalizer.NormalizeLedger(storage.LedgerEntry{
		ID: id, Date: d, Amount: decimal.RequireFromString(amount), Vendor: vendor,
	})
}

func TestHeuristic_ScoreLevels(t *testing.T) {
	h := scoring.NewHeuristic()
	ctx := context.Background()

	tests := []struct {
		name     string
		bank     normalizer.Record
		ledger   normalizer.Record
		expected int
	}{
		{
			name:     "all three criteria",
			bank:     bankRec(t, "b", "2026-03-15", "42.50", "starbucks coffee"),
			ledger:   ledgerRec(t, "l", "2026-03-15", "42.50", "starbucks"),
			expected: 100,
		},
		{
			name:     "amount and day only",
			bank:     bankRec(t, "b", "2026-03-15", "42.50", "posting 99213"),
			ledger:   ledgerRec(t, "l", "2026-03-15", "42.50", "starbucks"),
			expected: 66,
		},
		{
			name:     "amount only",
			bank:     bankRec(t, "b", "2026-03-18", "42.50", "posting 99213"),
			ledger:   ledgerRec(t, "l", "2026-03-15", "42.50", "starbucks"),
			expected: 33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := h.Score(ctx, []normalizer.Record{tt.bank}, []normalizer.Record{tt.ledger})
			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.expected, candidates[0].Score)
			assert.NotEmpty(t, candidates[0].Reasoning)
		})
	}
}

func TestHeuristic_NoCriteriaNoCandidate(t *testing.T) {
	h := scoring.NewHeuristic()

	bank := []normalizer.Record{bankRec(t, "b", "2026-03-18", "10.00", "shell gasoline")}
	ledger := []normalizer.Record{ledgerRec(t, "l", "2026-03-15", "99.00", "whole foods")}

	candidates, err := h.Score(context.Background(), bank, ledger)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestHeuristic_BestFit(t *testing.T) {
	h := scoring.NewHeuristic()

	bank := []normalizer.Record{bankRec(t, "b", "2026-03-15", "42.50", "starbucks coffee")}
	// The weaker candidate comes first; best-fit must still pick l-strong.
	ledger := []normalizer.Record{
		ledgerRec(t, "l-weak", "2026-03-15", "42.50", "bookstore"),
		ledgerRec(t, "l-strong", "2026-03-15", "42.50", "starbucks"),
	}

	candidates, err := h.Score(context.Background(), bank, ledger)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "l-strong", candidates[0].LedgerID)
	assert.Equal(t, 100, candidates[0].Score)
}

func TestHeuristic_TieKeepsFirst(t *testing.T) {
	h := scoring.NewHeuristic()

	bank := []normalizer.Record{bankRec(t, "b", "2026-03-15", "42.50", "starbucks")}
	ledger := []normalizer.Record{
		ledgerRec(t, "l1", "2026-03-15", "42.50", "starbucks"),
		ledgerRec(t, "l2", "2026-03-15", "42.50", "starbucks"),
	}

	candidates, err := h.Score(context.Background(), bank, ledger)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "l1", candidates[0].LedgerID)
}

func TestHeuristic_LedgerConsumedInBatch(t *testing.T) {
	h := scoring.NewHeuristic()

	bank := []normalizer.Record{
		bankRec(t, "b1", "2026-03-15", "42.50", "starbucks"),
		bankRec(t, "b2", "2026-03-15", "42.50", "starbucks"),
	}
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "42.50", "starbucks")}

	candidates, err := h.Score(context.Background(), bank, ledger)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "one ledger entry must not be proposed twice")
	assert.Equal(t, "b1", candidates[0].BankID)
}

func TestHeuristic_FuzzyTokens(t *testing.T) {
	h := scoring.NewHeuristic()

	// One character off, both words long enough for the edit-distance rule.
	bank := []normalizer.Record{bankRec(t, "b", "2026-03-15", "42.50", "starbuks")}
	ledger := []normalizer.Record{ledgerRec(t, "l", "2026-03-15", "42.50", "starbucks")}

	candidates, err := h.Score(context.Background(), bank, ledger)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 100, candidates[0].Score)
}

func TestHeuristic_CancelledContext(t *testing.T) {
	h := scoring.NewHeuristic()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Score(ctx, nil, nil)
	assert.Error(t, err)
}

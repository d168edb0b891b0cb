package matcher_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/matcher"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/registry"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
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

func TestMatch_AllCriteriaAgree(t *testing.T) {
	m := matcher.New()

	bank := []normalizer.Record{bankRec(t, "b1", "2026-03-15", "42.50", "AMZN Mktp US")}
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "42.50", "Amazon Marketplace")}

	result := m.Match(bank, ledger, nil)

	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "b1", result.Pairs[0].Bank.ID)
	assert.Equal(t, "l1", result.Pairs[0].Ledger.ID)
	assert.Equal(t, matcher.RuleMatchScore, result.Pairs[0].Score)
	assert.True(t, result.ConsumedBankIDs["b1"])
	assert.True(t, result.ConsumedLedgerIDs["l1"])
}

func TestMatch_AmountTolerance(t *testing.T) {
	m := matcher.New()
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "42.50", "coffee shop")}

	t.Run("difference just under a cent matches", func(t *testing.T) {
		bank := []normalizer.Record{bankRec(t, "b1", "2026-03-15", "42.509999", "coffee shop")}
		result := m.Match(bank, ledger, nil)
		assert.Len(t, result.Pairs, 1)
	})

	t.Run("difference of exactly a cent does not match", func(t *testing.T) {
		bank := []normalizer.Record{bankRec(t, "b1", "2026-03-15", "42.51", "coffee shop")}
		result := m.Match(bank, ledger, nil)
		assert.Empty(t, result.Pairs)
	})
}

func TestMatch_DateCriterion(t *testing.T) {
	m := matcher.New()
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "10.00", "coffee shop")}

	t.Run("adjacent day does not match", func(t *testing.T) {
		bank := []normalizer.Record{bankRec(t, "b1", "2026-03-16", "10.00", "coffee shop")}
		result := m.Match(bank, ledger, nil)
		assert.Empty(t, result.Pairs)
	})

	t.Run("unknown bank date does not match", func(t *testing.T) {
		amount := decimal.RequireFromString("10.00")
		desc := "coffee shop"
		bank := []normalizer.Record{normalizer.NormalizeBank(storage.BankTransaction{
			ID: "b1", Amount: &amount, Description: &desc,
		})}
		result := m.Match(bank, ledger, nil)
		assert.Empty(t, result.Pairs)
	})
}

func TestDescriptionsSimilar(t *testing.T) {
	tests := []struct {
		name     string
		bank     string
		ledger   string
		expected bool
	}{
		{"shared long word", "AMZN Marketplace payment", "Amazon Marketplace", true},
		{"word containment", "STARBUCKS #1234", "starbucks", true},
		{"whole text containment", "coffee", "city coffee roasters", true},
		{"short words ignored", "the and for", "the and not", false},
		{"no overlap", "shell gasoline", "whole foods", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bankRec(t, "b", "2026-03-15", "1.00", tt.bank)
			l := ledgerRec(t, "l", "2026-03-15", "1.00", tt.ledger)
			assert.Equal(t, tt.expected, matcher.DescriptionsSimilar(b, l))
		})
	}
}

// Two identical bank transactions, one ledger entry. The first pairs, the
// duplicate is consumed without pairing.
func TestMatch_DuplicateSuppression(t *testing.T) {
	m := matcher.New()

	bank := []normalizer.Record{
		bankRec(t, "b1", "2026-03-15", "9.99", "Netflix"),
		bankRec(t, "b2", "2026-03-15", "9.99", "Netflix"),
	}
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "9.99", "Netflix")}

	result := m.Match(bank, ledger, nil)

	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "b1", result.Pairs[0].Bank.ID)
	assert.True(t, result.ConsumedBankIDs["b1"])
	assert.True(t, result.ConsumedBankIDs["b2"], "duplicate should be consumed without pairing")
}

// A second ledger entry that duplicates a matched one is consumed too, so
// it cannot pair with a later bank record.
func TestMatch_DuplicateLedgerSuppression(t *testing.T) {
	m := matcher.New()

	bank := []normalizer.Record{
		bankRec(t, "b1", "2026-03-15", "9.99", "Netflix"),
		bankRec(t, "b2", "2026-03-15", "9.99", "Netflix subscription"),
	}
	ledger := []normalizer.Record{
		ledgerRec(t, "l1", "2026-03-15", "9.99", "Netflix"),
		ledgerRec(t, "l2", "2026-03-15", "9.99", "Netflix"),
	}

	result := m.Match(bank, ledger, nil)

	require.Len(t, result.Pairs, 1)
	assert.True(t, result.ConsumedLedgerIDs["l2"], "duplicate ledger entry should be consumed")
}

func TestMatch_OneToOne(t *testing.T) {
	m := matcher.New()

	// Three bank records could all match the single ledger entry.
	bank := []normalizer.Record{
		bankRec(t, "b1", "2026-03-15", "25.00", "grocery store"),
		bankRec(t, "b2", "2026-03-15", "25.00", "grocery store downtown"),
		bankRec(t, "b3", "2026-03-15", "25.00", "grocery delivery"),
	}
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "25.00", "grocery")}

	result := m.Match(bank, ledger, nil)

	assert.Len(t, result.Pairs, 1)
}

func TestMatch_AlreadyMatchedPairsSkipped(t *testing.T) {
	m := matcher.New()

	bank := []normalizer.Record{bankRec(t, "b1", "2026-03-15", "42.50", "Amazon")}
	ledger := []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "42.50", "Amazon")}
	already := map[string]bool{registry.PairKey("l1", "b1"): true}

	result := m.Match(bank, ledger, already)

	assert.Empty(t, result.Pairs)
}

func TestMatch_GreedyDateOrder(t *testing.T) {
	m := matcher.New()

	// Input order is reversed relative to date order; the earlier-dated
	// bank record must claim its ledger entry first.
	bank := []normalizer.Record{
		bankRec(t, "b-late", "2026-03-20", "5.00", "coffee"),
		bankRec(t, "b-early", "2026-03-10", "5.00", "coffee"),
	}
	ledger := []normalizer.Record{
		ledgerRec(t, "l-early", "2026-03-10", "5.00", "coffee"),
		ledgerRec(t, "l-late", "2026-03-20", "5.00", "coffee"),
	}

	result := m.Match(bank, ledger, nil)

	require.Len(t, result.Pairs, 2)
	assert.Equal(t, "b-early", result.Pairs[0].Bank.ID)
	assert.Equal(t, "l-early", result.Pairs[0].Ledger.ID)
	assert.Equal(t, "b-late", result.Pairs[1].Bank.ID)
	assert.Equal(t, "l-late", result.Pairs[1].Ledger.ID)
}

func TestMatch_EmptyInputs(t *testing.T) {
	m := matcher.New()

	result := m.Match(nil, nil, nil)
	assert.Empty(t, result.Pairs)

	result = m.Match(nil, []normalizer.Record{ledgerRec(t, "l1", "2026-03-15", "1.00", "x")}, nil)
	assert.Empty(t, result.Pairs)
}

func TestMatch_Deterministic(t *testing.T) {
	m := matcher.New()

	bank := []normalizer.Record{
		bankRec(t, "b1", "2026-03-15", "25.00", "grocery store"),
		bankRec(t, "b2", "2026-03-15", "25.00", "grocery store"),
	}
	ledger := []normalizer.Record{
		ledgerRec(t, "l1", "2026-03-15", "25.00", "grocery"),
		ledgerRec(t, "l2", "2026-03-15", "25.00", "grocery"),
	}

	first := m.Match(bank, ledger, nil)
	for i := 0; i < 10; i++ {
		again := m.Match(bank, ledger, nil)
		require.Equal(t, len(first.Pairs), len(again.Pairs))
		for j := range first.Pairs {
			assert.Equal(t, first.Pairs[j].Bank.ID, again.Pairs[j].Bank.ID)
			assert.Equal(t, first.Pairs[j].Ledger.ID, again.Pairs[j].Ledger.ID)
		}
	}
}

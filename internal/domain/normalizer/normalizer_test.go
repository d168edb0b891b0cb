package normalizer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "AMAZON Marketplace", "amazon marketplace"},
		{"strips punctuation", "AMZN*Mktp US·Seattle", "amzn mktp us seattle"},
		{"collapses whitespace", "  coffee   shop  ", "coffee shop"},
		{"keeps digits", "Store #1234", "store 1234"},
		{"empty", "", ""},
		{"only punctuation", "***---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizer.NormalizeText(tt.input))
		})
	}
}

func TestNormalizeBank(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		date := time.Date(2026, 3, 15, 18, 42, 7, 0, time.UTC)
		amount := decimal.RequireFromString("42.50")
		desc := "AMZN Mktp"
		rec := normalizer.NormalizeBank(storage.BankTransaction{
			ID:          "b1",
			Date:        &date,
			Amount:      &amount,
			Description: &desc,
		})

		assert.Equal(t, "b1", rec.ID)
		assert.True(t, rec.DayKnown)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), rec.Day)
		assert.True(t, rec.AmountKnown)
		assert.True(t, amount.Equal(rec.Amount))
		assert.Equal(t, "AMZN Mktp", rec.RawText)
		assert.Equal(t, "amzn mktp", rec.Text)
		assert.Equal(t, []string{"amzn", "mktp"}, rec.Tokens)
	})

	t.Run("missing fields degrade to unknown", func(t *testing.T) {
		rec := normalizer.NormalizeBank(storage.BankTransaction{ID: "b2"})

		assert.False(t, rec.DayKnown)
		assert.False(t, rec.AmountKnown)
		assert.Empty(t, rec.Text)
		assert.Nil(t, rec.Tokens)
		assert.Equal(t, "", rec.DayString())
	})

	t.Run("time of day is discarded", func(t *testing.T) {
		morning := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)
		evening := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
		a := normalizer.NormalizeBank(storage.BankTransaction{ID: "a", Date: &morning})
		b := normalizer.NormalizeBank(storage.BankTransaction{ID: "b", Date: &evening})

		assert.True(t, normalizer.SameDay(a, b))
	})
}

func TestNormalizeLedger(t *testing.T) {
	rec := normalizer.NormalizeLedger(storage.LedgerEntry{
		ID:     "l1",
		Date:   time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("42.50"),
		Vendor: "Amazon Marketplace",
	})

	assert.True(t, rec.DayKnown)
	assert.True(t, rec.AmountKnown)
	assert.Equal(t, "amazon marketplace", rec.Text)
	assert.Equal(t, "2026-03-15", rec.DayString())
}

func TestSameDay(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	known := normalizer.Record{ID: "a", Day: day, DayKnown: true}
	sameDay := normalizer.Record{ID: "b", Day: day, DayKnown: true}
	otherDay := normalizer.Record{ID: "c", Day: day.AddDate(0, 0, 1), DayKnown: true}
	unknown := normalizer.Record{ID: "d"}

	assert.True(t, normalizer.SameDay(known, sameDay))
	assert.False(t, normalizer.SameDay(known, otherDay))
	assert.False(t, normalizer.SameDay(known, unknown))
	assert.False(t, normalizer.SameDay(unknown, unknown))
}

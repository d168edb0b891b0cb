// Package normalizer turns raw record fields into a canonical comparable
// form: day-granularity dates, fixed-point amounts and cleaned description
// text with word tokens.
//
// Normalization is pure and never fails. Missing or invalid fields degrade
// to explicit "unknown" flags so matching on them can be skipped instead of
// silently comparing fabricated values.
package normalizer

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// Record is the canonical comparable form of a bank or ledger record.
//
// Sign convention: both sources record money movement with the same sign
// (outflows positive), which the ingestion collaborator guarantees. Amount
// comparisons must always use a tolerance, never exact equality.
type Record struct {
	ID          string
	Day         time.Time // zero value when DayKnown is false
	DayKnown    bool
	Amount      decimal.Decimal // zero value when AmountKnown is false
	AmountKnown bool
	RawText     string   // original description, for display
	Text        string   // lowercased, punctuation stripped, whitespace collapsed
	Tokens      []string // Text split into words
}

// NormalizeBank canonicalizes a bank transaction.
func NormalizeBank(tx storage.BankTransaction) Record {
	r := Record{ID: tx.ID}
	if tx.Date != nil {
		r.Day = dayOf(*tx.Date)
		r.DayKnown = true
	}
	if tx.Amount != nil {
		r.Amount = *tx.Amount
		r.AmountKnown = true
	}
	if tx.Description != nil {
		r.RawText = *tx.Description
	}
	r.Text = NormalizeText(r.RawText)
	r.Tokens = tokenize(r.Text)
	return r
}

// NormalizeLedger canonicalizes a ledger entry.
func NormalizeLedger(entry storage.LedgerEntry) Record {
	r := Record{
		ID:          entry.ID,
		Day:         dayOf(entry.Date),
		DayKnown:    true,
		Amount:      entry.Amount,
		AmountKnown: true,
		RawText:     entry.Vendor,
	}
	r.Text = NormalizeText(r.RawText)
	r.Tokens = tokenize(r.Text)
	return r
}

// NormalizeText lowercases, strips punctuation and collapses whitespace.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SameDay reports whether both records have a known date on the same
// calendar day. A record with an unknown date never matches on date.
func SameDay(a, b Record) bool {
	return a.DayKnown && b.DayKnown && a.Day.Equal(b.Day)
}

// DayString formats the record's day, or returns empty when unknown.
func (r Record) DayString() string {
	if !r.DayKnown {
		return ""
	}
	return r.Day.Format("2006-01-02")
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(text)
}

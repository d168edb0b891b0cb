package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
)

func testRecord(id, amount string) normalizer.Record {
	return normalizer.Record{
		ID:          id,
		Day:         time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		DayKnown:    true,
		Amount:      decimal.RequireFromString(amount),
		AmountKnown: true,
		RawText:     "Test Vendor",
	}
}

func chatResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestOpenAIScorer_Score(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(chatResponse(`{"matches":[
			{"bank_id":"b1","ledger_id":"l1","match_score":0.85,"reasoning":"close amounts"},
			{"bank_id":"","ledger_id":"l2","match_score":0.9,"reasoning":"missing bank id"}
		]}`)))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer("test-key", "gpt-4o-mini")
	scorer.baseURL = server.URL

	candidates, err := scorer.Score(context.Background(),
		[]normalizer.Record{testRecord("b1", "42.50")},
		[]normalizer.Record{testRecord("l1", "42.50")})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	require.Len(t, candidates, 1, "candidates with missing IDs are dropped")
	assert.Equal(t, "b1", candidates[0].BankID)
	assert.Equal(t, "l1", candidates[0].LedgerID)
	assert.Equal(t, 85, candidates[0].Score, "fractional scores are normalized to 0-100")
	assert.Equal(t, "close amounts", candidates[0].Reasoning)
}

func TestOpenAIScorer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer("test-key", "")
	scorer.baseURL = server.URL

	_, err := scorer.Score(context.Background(),
		[]normalizer.Record{testRecord("b1", "1.00")},
		[]normalizer.Record{testRecord("l1", "1.00")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIScorer_MalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("not json at all")))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer("test-key", "")
	scorer.baseURL = server.URL

	_, err := scorer.Score(context.Background(),
		[]normalizer.Record{testRecord("b1", "1.00")},
		[]normalizer.Record{testRecord("l1", "1.00")})
	assert.Error(t, err)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		raw      float64
		expected int
	}{
		{0.85, 85},
		{1.0, 100},
		{0, 0},
		{60, 60},
		{150, 100},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampScore(tt.raw))
	}
}

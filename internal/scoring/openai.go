package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mirchez/transaction-reconciler-sub001/internal/domain/normalizer"
)

const scoringPrompt = `You are a financial reconciliation assistant. Given unmatched bank transactions and ledger entries, identify pairs that likely refer to the same real-world transaction.

Consider amount proximity, date proximity and description similarity. Only propose pairs you have some confidence in, and never reuse a bank transaction or ledger entry across pairs.

Respond with JSON: {"matches": [{"bank_id": "...", "ledger_id": "...", "match_score": 0.0-1.0, "reasoning": "..."}]}`

// OpenAIScorer scores candidate pairs with an OpenAI chat completion.
type OpenAIScorer struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*OpenAIScorer)(nil)

// NewOpenAIScorer creates a scorer backed by the OpenAI API.
func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIScorer{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements Provider.
func (s *OpenAIScorer) Name() string { return "openai" }

// wire types for the chat completions endpoint

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type recordPayload struct {
	ID          string `json:"id"`
	Date        string `json:"date,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Description string `json:"description,omitempty"`
}

type scoringPayload struct {
	BankTransactions []recordPayload `json:"bank_transactions"`
	LedgerEntries    []recordPayload `json:"ledger_entries"`
}

type scoredMatch struct {
	BankID    string  `json:"bank_id"`
	LedgerID  string  `json:"ledger_id"`
	Score     float64 `json:"match_score"`
	Reasoning string  `json:"reasoning"`
}

type scoringResult struct {
	Matches []scoredMatch `json:"matches"`
}

// Score implements Provider. The whole remainder is scored in one request.
func (s *OpenAIScorer) Score(ctx context.Context, bank, ledger []normalizer.Record) ([]Candidate, error) {
	payload := scoringPayload{
		BankTransactions: toPayload(bank),
		LedgerEntries:    toPayload(ledger),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scoring payload: %w", err)
	}

	request := chatCompletionRequest{
		Model:       s.model,
		Temperature: 0.1,
		Messages: []chatMessage{
			{Role: "system", Content: scoringPrompt},
			{Role: "user", Content: string(payloadJSON)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	response, err := s.createChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	var result scoringResult
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse scoring response: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.BankID == "" || m.LedgerID == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			BankID:    m.BankID,
			LedgerID:  m.LedgerID,
			Score:     ClampScore(m.Score),
			Reasoning: m.Reasoning,
		})
	}
	return candidates, nil
}

func (s *OpenAIScorer) createChatCompletion(ctx context.Context, request chatCompletionRequest) (*chatCompletionResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, fmt.Errorf("openai API error: %s (type: %s)", errorResp.Error.Message, errorResp.Error.Type)
		}
		return nil, fmt.Errorf("openai API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &response, nil
}

func toPayload(records []normalizer.Record) []recordPayload {
	out := make([]recordPayload, 0, len(records))
	for _, r := range records {
		p := recordPayload{ID: r.ID, Description: r.RawText}
		if r.DayKnown {
			p.Date = r.DayString()
		}
		if r.AmountKnown {
			p.Amount = r.Amount.String()
		}
		out = append(out, p)
	}
	return out
}

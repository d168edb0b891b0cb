package cli

import (
	"fmt"
	"log/slog"

	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/config"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
	"github.com/mirchez/transaction-reconciler-sub001/internal/scoring"
)

// NewScoringProvider builds the configured scoring provider.
// Returns nil for "none", which disables the external scoring phase.
func NewScoringProvider(cfg *config.Config) (scoring.Provider, error) {
	switch cfg.Scoring.Provider {
	case "heuristic":
		return scoring.NewHeuristic(), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai scoring requires OPENAI_API_KEY")
		}
		return scoring.NewOpenAIScorer(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown scoring provider %q", cfg.Scoring.Provider)
	}
}

// NewReconciler wires a reconciler from config.
func NewReconciler(cfg *config.Config, repo storage.Repository, logger *slog.Logger) (*reconcile.Reconciler, error) {
	provider, err := NewScoringProvider(cfg)
	if err != nil {
		return nil, err
	}

	opts := []reconcile.Option{
		reconcile.WithAcceptThreshold(cfg.Scoring.AcceptThreshold),
	}
	if provider != nil {
		opts = append(opts, reconcile.WithScorer(provider))
	}

	return reconcile.New(repo, logger, opts...), nil
}

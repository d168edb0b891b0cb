// Package cli wires configuration, storage and the reconciliation engine
// for the command line entrypoints.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
	"github.com/mirchez/transaction-reconciler-sub001/internal/application/service"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/config"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/logging"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// RunReconcile runs a single reconciliation for one account and prints the
// summary.
func RunReconcile(cfg *config.Config, flags ReconcileFlags) error {
	if flags.Account == "" {
		return errors.New("account is required (use -account)")
	}

	if flags.DBPath != "" {
		cfg.Storage.DatabasePath = flags.DBPath
	}
	if flags.Provider != "" {
		cfg.Scoring.Provider = flags.Provider
	}
	if flags.Threshold != 0 {
		cfg.Scoring.AcceptThreshold = flags.Threshold
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	reconciler, err := NewReconciler(cfg, store, logger)
	if err != nil {
		return err
	}
	svc := service.NewReconcileService(reconciler, logger)

	PrintHeader(flags.Account, cfg.Scoring.Provider)

	summary, err := svc.Reconcile(context.Background(), flags.Account)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrNoLedgerData):
			return fmt.Errorf("no ledger entries for account %q; import ledger data first", flags.Account)
		case errors.Is(err, reconcile.ErrNoBankData):
			return fmt.Errorf("no bank transactions for account %q; import bank data first", flags.Account)
		default:
			return err
		}
	}

	PrintSummary(summary, flags.Verbose)
	return nil
}

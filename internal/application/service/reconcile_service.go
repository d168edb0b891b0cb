// Package service coordinates reconciliation runs across accounts.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
)

// ReconcileService serializes reconciliation per account. Two runs for the
// same account race on consumed-record state and could double-match before
// either commits, so the whole loading-to-persisting sequence holds the
// account lock. Runs for different accounts proceed in parallel.
type ReconcileService struct {
	reconciler *reconcile.Reconciler
	logger     *slog.Logger

	accountLocks map[string]*sync.Mutex
	locksMutex   sync.Mutex
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(reconciler *reconcile.Reconciler, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		reconciler:   reconciler,
		logger:       logger,
		accountLocks: make(map[string]*sync.Mutex),
	}
}

// Reconcile runs reconciliation for an account, queueing behind any run
// already in flight for the same account.
func (s *ReconcileService) Reconcile(ctx context.Context, accountKey string) (*reconcile.Summary, error) {
	lock := s.lockFor(accountKey)
	lock.Lock()
	defer lock.Unlock()

	s.logger.Info("starting reconciliation", "account", accountKey)
	return s.reconciler.Reconcile(ctx, accountKey)
}

func (s *ReconcileService) lockFor(accountKey string) *sync.Mutex {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	lock, ok := s.accountLocks[accountKey]
	if !ok {
		lock = &sync.Mutex{}
		s.accountLocks[accountKey] = lock
	}
	return lock
}

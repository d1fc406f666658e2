package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/walletguard/walletd/pkg/repository"
)

// Batch enumerates all active accounts, runs one reconciliation per account
// on a bounded worker pool and finishes with a single discrepancy report.
// Individual reconciliation failures are logged and never abort the batch;
// the report runs only after every reconciliation has completed.
type Batch struct {
	uow      repository.UnitOfWork
	verifier *Verifier
	reporter *Reporter
	workers  int
	logger   *slog.Logger
}

// NewBatch creates a batch orchestrator.
func NewBatch(uow repository.UnitOfWork, verifier *Verifier, reporter *Reporter, workers int, logger *slog.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		uow:      uow,
		verifier: verifier,
		reporter: reporter,
		workers:  workers,
		logger:   logger.With("service", "verification-batch"),
	}
}

// Run verifies every non-deleted account and then sends the discrepancy
// report. With zero accounts it returns immediately without scheduling any
// work or report. Report delivery failure is returned to the caller.
func (b *Batch) Run(ctx context.Context) error {
	ids, err := b.uow.Accounts().ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active accounts: %w", err)
	}
	if len(ids) == 0 {
		b.logger.Warn("no accounts found to verify")
		return nil
	}

	b.logger.Info("starting balance verification", "accounts", len(ids))

	queue := make(chan int64)
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range queue {
				if err := b.verifier.VerifyAccount(ctx, id); err != nil {
					b.logger.Error("account verification failed", "account_id", id, "error", err)
				}
			}
		}()
	}
	for _, id := range ids {
		queue <- id
	}
	close(queue)
	wg.Wait()

	b.logger.Info("balance verification completed", "accounts", len(ids))
	return b.reporter.Send(ctx)
}

// Package verification recomputes expected balances from the transaction
// ledger, flags accounts whose stored balance drifts beyond the tolerance,
// and reports flagged accounts to the configured admin address.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/repository"
)

// tolerance absorbs rounding noise when comparing stored against expected
// balances. Differences at or below it are not discrepancies.
var tolerance = decimal.RequireFromString("0.01")

// Verifier reconciles one account at a time. It reads without locks and
// never mutates balances, only the flag fields, so a run overlapping an
// in-flight transfer may misjudge transiently; the next run corrects it.
type Verifier struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewVerifier creates a reconciliation engine.
func NewVerifier(uow repository.UnitOfWork, logger *slog.Logger) *Verifier {
	return &Verifier{uow: uow, logger: logger.With("service", "verification")}
}

// VerifyAccount replays the account's full ledger, compares the expected
// balance against the stored one and flags or unflags accordingly. It is
// idempotent and safe to run concurrently across distinct accounts. A
// missing account is logged and skipped, not an error.
func (v *Verifier) VerifyAccount(ctx context.Context, accountID int64) error {
	acct, err := v.uow.Accounts().Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			v.logger.Warn("account not found, skipping verification", "account_id", accountID)
			return nil
		}
		return fmt.Errorf("load account %d: %w", accountID, err)
	}

	incoming, err := v.uow.Transactions().IncomingTotal(ctx, accountID)
	if err != nil {
		return fmt.Errorf("sum incoming for account %d: %w", accountID, err)
	}
	outgoing, err := v.uow.Transactions().OutgoingTotal(ctx, accountID)
	if err != nil {
		return fmt.Errorf("sum outgoing for account %d: %w", accountID, err)
	}

	expected := incoming.Sub(outgoing)
	discrepancy := acct.Balance.Sub(expected)

	if discrepancy.Abs().GreaterThan(tolerance) {
		reason := fmt.Sprintf(
			"Balance mismatch detected. Expected: $%s, Actual: $%s, Discrepancy: $%s",
			expected.StringFixed(2),
			acct.Balance.StringFixed(2),
			discrepancy.StringFixed(2),
		)
		if err := v.uow.Accounts().SetFlag(ctx, accountID, time.Now(), reason); err != nil {
			return fmt.Errorf("flag account %d: %w", accountID, err)
		}
		v.logger.Warn("account flagged", "account_id", accountID, "reason", reason)
		return nil
	}

	if acct.Flagged() {
		if err := v.uow.Accounts().ClearFlag(ctx, accountID); err != nil {
			return fmt.Errorf("unflag account %d: %w", accountID, err)
		}
		v.logger.Info("account unflagged, balance verified", "account_id", accountID)
	}
	return nil
}

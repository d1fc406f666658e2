package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/walletguard/walletd/pkg/repository"
)

// Mailer delivers a composed message to a single recipient. The SMTP
// implementation lives in infra/mailer.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Reporter collects the currently flagged accounts and sends one summary to
// the configured admin address.
type Reporter struct {
	uow        repository.UnitOfWork
	mailer     Mailer
	adminEmail string
	logger     *slog.Logger
}

// NewReporter creates a discrepancy reporter.
func NewReporter(uow repository.UnitOfWork, mailer Mailer, adminEmail string, logger *slog.Logger) *Reporter {
	return &Reporter{
		uow:        uow,
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger.With("service", "verification-reporter"),
	}
}

// Send emails the flagged-account summary, ordered by flagged_at descending.
// With nothing flagged it logs and sends nothing. Delivery failures are
// returned so the caller can retry or alert.
func (r *Reporter) Send(ctx context.Context) error {
	flagged, err := r.uow.Accounts().ListFlagged(ctx)
	if err != nil {
		return fmt.Errorf("list flagged accounts: %w", err)
	}
	if len(flagged) == 0 {
		r.logger.Info("balance verification completed: no discrepancies found")
		return nil
	}

	subject := fmt.Sprintf("Balance Discrepancy Alert - %d User(s) Flagged", len(flagged))

	var body strings.Builder
	fmt.Fprintf(&body, "%d account(s) currently flagged for balance discrepancies:\n\n", len(flagged))
	for _, a := range flagged {
		fmt.Fprintf(&body, "Account #%d  %s <%s>\n", a.ID, a.Name, a.Email)
		fmt.Fprintf(&body, "  Balance:    $%s\n", a.Balance.StringFixed(2))
		fmt.Fprintf(&body, "  Flagged at: %s\n", a.FlaggedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&body, "  Reason:     %s\n\n", a.FlaggedReason)
	}

	if err := r.mailer.Send(ctx, r.adminEmail, subject, body.String()); err != nil {
		r.logger.Error("failed to send balance discrepancy report", "error", err)
		return fmt.Errorf("send discrepancy report: %w", err)
	}
	r.logger.Info("balance discrepancy report sent",
		"to", r.adminEmail, "flagged_accounts", len(flagged))
	return nil
}

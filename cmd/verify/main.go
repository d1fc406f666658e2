// Command verify runs one batch balance verification over all active
// accounts and sends the discrepancy report. Intended to be invoked from
// cron.
package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/walletguard/walletd/infra/database"
	"github.com/walletguard/walletd/infra/mailer"
	infrarepo "github.com/walletguard/walletd/infra/repository"
	"github.com/walletguard/walletd/pkg/config"
	"github.com/walletguard/walletd/pkg/logging"
	"github.com/walletguard/walletd/pkg/service/verification"
)

func main() {
	workers := kingpin.Flag("workers", "Concurrent account verifications").Short('w').Default("4").Int()
	timeout := kingpin.Flag("timeout", "Overall run timeout").Default("10m").Duration()
	kingpin.Parse()

	logger := logging.New(&config.Log{Prefix: "[walletd-verify]"})
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.Log)

	db, err := database.Connect(cfg.DB, logger)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	uow := infrarepo.NewUoW(db)

	smtp, err := mailer.New(cfg.Mail)
	if err != nil {
		logger.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	verifier := verification.NewVerifier(uow, logger)
	reporter := verification.NewReporter(uow, smtp, cfg.Mail.AdminEmail, logger)
	batch := verification.NewBatch(uow, verifier, reporter, *workers, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := batch.Run(ctx); err != nil {
		logger.Error("balance verification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("balance verification finished", "took", time.Since(start))
}

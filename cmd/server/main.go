// Command server runs the walletd HTTP API, the transfer job processor and,
// when configured, the periodic balance verification loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/walletguard/walletd/infra/database"
	"github.com/walletguard/walletd/infra/mailer"
	infranotify "github.com/walletguard/walletd/infra/notify"
	infrarepo "github.com/walletguard/walletd/infra/repository"
	"github.com/walletguard/walletd/pkg/config"
	"github.com/walletguard/walletd/pkg/eventbus"
	"github.com/walletguard/walletd/pkg/logging"
	"github.com/walletguard/walletd/pkg/notification"
	authsvc "github.com/walletguard/walletd/pkg/service/auth"
	"github.com/walletguard/walletd/pkg/service/transfer"
	"github.com/walletguard/walletd/pkg/service/verification"
	"github.com/walletguard/walletd/webapi"
)

func main() {
	logger := logging.New(&config.Log{Prefix: "[walletd]"})
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.App, logger *slog.Logger) error {
	if cfg.Auth.Jwt.Secret == "" {
		return errors.New("AUTH_JWT_SECRET must be set")
	}

	db, err := database.Connect(cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	uow := infrarepo.NewUoW(db)

	bus := eventbus.NewMemory()
	pub, err := newPublisher(cfg.Notifier, logger)
	if err != nil {
		return err
	}
	notification.Register(bus, pub, logger)

	engine := transfer.New(uow, bus, logger)
	processor := transfer.NewProcessor(engine, bus, *cfg.Transfer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	processor.Start(ctx)

	smtp, err := mailer.New(cfg.Mail)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	verifier := verification.NewVerifier(uow, logger)
	reporter := verification.NewReporter(uow, smtp, cfg.Mail.AdminEmail, logger)
	batch := verification.NewBatch(uow, verifier, reporter, cfg.Verification.Workers, logger)

	if cfg.Verification.Interval > 0 {
		go runVerificationLoop(ctx, batch, cfg.Verification.Interval, logger)
	}

	app := webapi.New(cfg, uow, authsvc.New(uow, *cfg.Auth.Jwt, logger), processor, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	processor.Stop()
	return nil
}

func runVerificationLoop(ctx context.Context, batch *verification.Batch, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := batch.Run(ctx); err != nil {
				logger.Error("scheduled verification failed", "error", err)
			}
		}
	}
}

func newPublisher(cfg *config.Notifier, logger *slog.Logger) (notification.Publisher, error) {
	switch cfg.Backend {
	case "redis":
		return infranotify.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Stream, logger)
	case "kafka":
		return infranotify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger), nil
	default:
		return infranotify.NewLogPublisher(logger), nil
	}
}

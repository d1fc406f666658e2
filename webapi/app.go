// Package webapi wires the HTTP surface: authentication, transfer intake,
// transaction listing and receiver validation. Everything here is a thin
// wrapper; the invariants live in the services.
package webapi

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/walletguard/walletd/pkg/config"
	"github.com/walletguard/walletd/pkg/repository"
	authsvc "github.com/walletguard/walletd/pkg/service/auth"
	"github.com/walletguard/walletd/pkg/service/transfer"
	"github.com/walletguard/walletd/webapi/middleware"
)

// Server owns the handler dependencies.
type Server struct {
	cfg       *config.App
	uow       repository.UnitOfWork
	authSvc   *authsvc.Service
	processor *transfer.Processor
	logger    *slog.Logger
}

// New builds the fiber application with all routes registered.
func New(
	cfg *config.App,
	uow repository.UnitOfWork,
	authSvc *authsvc.Service,
	processor *transfer.Processor,
	logger *slog.Logger,
) *fiber.App {
	s := &Server{
		cfg:       cfg,
		uow:       uow,
		authSvc:   authSvc,
		processor: processor,
		logger:    logger.With("component", "webapi"),
	}

	app := fiber.New(fiber.Config{AppName: "walletd"})

	app.Post("/auth/register", Register(authSvc))
	app.Post("/auth/login", Login(authSvc))

	protected := middleware.JwtProtected(*cfg.Auth.Jwt)
	app.Get("/user", protected, s.CurrentAccount())
	app.Get("/receivers/:id", protected, s.ValidateReceiver())
	app.Get("/transactions", protected, s.ListTransactions())
	app.Post("/transactions", protected, s.CreateTransfer())

	return app
}

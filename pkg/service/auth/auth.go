// Package auth provides the thin identity surface the transfer core relies
// on: registration, login and JWT issuance. Session handling beyond that is
// out of scope.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/walletguard/walletd/pkg/config"
	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/repository"
)

// ErrInvalidCredentials is returned on any identity/password mismatch.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service authenticates accounts and issues tokens.
type Service struct {
	uow    repository.UnitOfWork
	cfg    config.Jwt
	logger *slog.Logger
}

// New creates an auth service.
func New(uow repository.UnitOfWork, cfg config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger.With("service", "auth")}
}

// Register creates an account with a zero balance and a bcrypt password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.uow.Accounts().Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", "account_id", a.ID)
	return a, nil
}

// Login verifies the credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.uow.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// GenerateToken issues a signed JWT whose subject is the account id.
func (s *Service) GenerateToken(a *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub": a.ID,
		"exp": time.Now().Add(s.cfg.Expiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

package webapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	authsvc "github.com/walletguard/walletd/pkg/service/auth"
	"github.com/walletguard/walletd/webapi/common"
	"github.com/walletguard/walletd/webapi/middleware"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account with balance zero and returns its summary.
func Register(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if input == nil {
			return err
		}
		a, err := svc.Register(c.Context(), input.Name, input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Registration failed", "email may already be in use")
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account registered", accountView(a))
	}
}

// Login authenticates and returns a bearer token.
func Login(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		a, err := svc.Login(c.Context(), input.Email, input.Password)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidCredentials) {
				return common.ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Invalid email or password", "")
			}
			return common.DomainErrorJSON(c, err)
		}
		token, err := svc.GenerateToken(a)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{"token": token})
	}
}

// CurrentAccount returns the authenticated account.
func (s *Server) CurrentAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := middleware.AccountID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		a, err := s.uow.Accounts().Get(c.Context(), id)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", accountView(a))
	}
}

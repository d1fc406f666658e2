// Package middleware provides the JWT identity middleware. The core trusts
// the account id it resolves as the sender of any transfer request.
package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/walletguard/walletd/pkg/config"
)

// ErrNoIdentity is returned when no account id can be resolved from the
// request context.
var ErrNoIdentity = errors.New("missing user context")

// JwtProtected guards a route with bearer-token authentication.
func JwtProtected(cfg config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			c.Set(fiber.HeaderContentType, "application/problem+json")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"title":  "Unauthorized",
				"status": fiber.StatusUnauthorized,
				"detail": err.Error(),
			})
		},
	})
}

// AccountID resolves the acting account id from the validated token.
func AccountID(c *fiber.Ctx) (int64, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return 0, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrNoIdentity
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrNoIdentity
	}
	return int64(sub), nil
}

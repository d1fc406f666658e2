// Package common holds the shared response envelope, RFC 9457 problem
// details and request binding helpers for the web API.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/service/auth"
)

// Response is the standard success envelope.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 response.
func ProblemDetailsJSON(c *fiber.Ctx, status int, title, detail string) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes. The switch is
// exhaustive over the transfer error taxonomy; anything unmatched is a 500.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSameAccount):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientBalance):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountFlagged):
		return fiber.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// DomainErrorJSON writes a problem response for a domain error, preserving
// the user-facing message, and a generic one for anything unexpected.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	status := ErrorToStatusCode(err)
	if status == fiber.StatusInternalServerError {
		return ProblemDetailsJSON(c, status, "Internal Server Error", "")
	}
	return ProblemDetailsJSON(c, status, "Request failed", err.Error())
}

// BindAndValidate parses the request body into T and validates it. On
// failure it writes the error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := validator.New().Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Validation failed", err.Error())
	}
	return &input, nil
}

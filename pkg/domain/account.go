// Package domain holds the core wallet entities and the transfer error
// taxonomy. Entities are plain structs; persistence mapping lives in
// infra/repository.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's wallet. Balance is a fixed-point decimal with two
// fractional digits and may be negative during anomalies; no floor is applied
// at this level.
//
// Invariants:
//   - Balance is mutated only by the transfer engine.
//   - FlaggedAt/FlaggedReason are mutated only by the verification engine.
//   - A non-nil FlaggedAt suspends the account from sending and receiving.
type Account struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	Balance       decimal.Decimal
	FlaggedAt     *time.Time
	FlaggedReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Flagged reports whether the account is currently suspended.
func (a *Account) Flagged() bool { return a.FlaggedAt != nil }

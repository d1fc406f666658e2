// Package events defines the typed notifications the core emits after a
// transfer commits or terminally fails. A dispatcher forwards them to the
// configured outbound channel; delivery is decoupled from commit success.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
)

const (
	TypeTransactionCreated = "transaction.created"
	TypeTransferFailed     = "transfer.failed"
)

// Event is implemented by every outbound notification.
type Event interface {
	Type() string
}

// Party is the account summary embedded in notifications.
type Party struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

// PartyOf builds a Party from an account.
func PartyOf(a *domain.Account) Party {
	return Party{ID: a.ID, Name: a.Name, Email: a.Email, Balance: a.Balance}
}

// TransactionCreated is emitted once per involved party after a transfer
// commits. AccountID addresses the notification; Role is relative to it.
type TransactionCreated struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     int64           `json:"account_id"`
	TransactionID int64           `json:"transaction_id"`
	SenderID      int64           `json:"sender_id"`
	ReceiverID    int64           `json:"receiver_id"`
	Sender        Party           `json:"sender"`
	Receiver      Party           `json:"receiver"`
	Amount        decimal.Decimal `json:"amount"`
	CommissionFee decimal.Decimal `json:"commission_fee"`
	Role          domain.Role     `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (TransactionCreated) Type() string { return TypeTransactionCreated }

// TransferFailed is emitted exactly once when a transfer job terminates
// without committing. Message is safe for user display.
type TransferFailed struct {
	ID            uuid.UUID       `json:"id"`
	SenderID      int64           `json:"sender_id"`
	ReceiverID    int64           `json:"receiver_id"`
	Amount        decimal.Decimal `json:"amount"`
	CommissionFee decimal.Decimal `json:"commission_fee"`
	Message       string          `json:"message"`
}

func (TransferFailed) Type() string { return TypeTransferFailed }

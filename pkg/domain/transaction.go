package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role describes a transaction from one party's point of view.
type Role string

const (
	RoleDebit  Role = "Debit"
	RoleCredit Role = "Credit"
)

// Transaction is one immutable ledger entry: Amount is credited to the
// receiver, Amount+CommissionFee is debited from the sender. The fee is not
// credited anywhere. Entries are never updated or deleted.
type Transaction struct {
	ID            int64
	SenderID      int64
	ReceiverID    int64
	Amount        decimal.Decimal
	CommissionFee decimal.Decimal
	CreatedAt     time.Time

	// Resolved parties, populated by list queries.
	Sender   *Account
	Receiver *Account
}

// RoleFor computes the transaction's role relative to the given account.
// An empty Role means the account is not involved.
func (t *Transaction) RoleFor(accountID int64) Role {
	switch accountID {
	case t.SenderID:
		return RoleDebit
	case t.ReceiverID:
		return RoleCredit
	}
	return ""
}

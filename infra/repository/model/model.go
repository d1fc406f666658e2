// Package model holds the gorm persistence records and their mapping to the
// domain entities.
package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/walletguard/walletd/pkg/domain"
)

// Account is the accounts table. Soft deletion excludes a row from batch
// verification without destroying ledger history.
type Account struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"size:255;not null"`
	Email         string          `gorm:"size:255;uniqueIndex;not null"`
	Password      string          `gorm:"size:255;not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FlaggedAt     *time.Time
	FlaggedReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// Transaction is the append-only ledger table. Rows are never updated or
// deleted. The sender and receiver indexes cover the
// "sender_id = ? OR receiver_id = ?" listing with created_at ordering.
type Transaction struct {
	ID            int64           `gorm:"primaryKey"`
	SenderID      int64           `gorm:"not null;index:idx_transactions_sender,priority:1"`
	ReceiverID    int64           `gorm:"not null;index:idx_transactions_receiver,priority:1"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CommissionFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"index:idx_transactions_sender,priority:2;index:idx_transactions_receiver,priority:2"`

	Sender   *Account `gorm:"foreignKey:SenderID"`
	Receiver *Account `gorm:"foreignKey:ReceiverID"`
}

// ToDomain maps an account row to the domain entity.
func (a *Account) ToDomain() *domain.Account {
	d := &domain.Account{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.Password,
		Balance:      a.Balance,
		FlaggedAt:    a.FlaggedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.FlaggedReason != nil {
		d.FlaggedReason = *a.FlaggedReason
	}
	return d
}

// ToDomain maps a ledger row, resolving loaded parties.
func (t *Transaction) ToDomain() *domain.Transaction {
	d := &domain.Transaction{
		ID:            t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount,
		CommissionFee: t.CommissionFee,
		CreatedAt:     t.CreatedAt,
	}
	if t.Sender != nil {
		d.Sender = t.Sender.ToDomain()
	}
	if t.Receiver != nil {
		d.Receiver = t.Receiver.ToDomain()
	}
	return d
}

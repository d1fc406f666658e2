package webapi

import (
	"time"

	"github.com/walletguard/walletd/pkg/domain"
)

// AccountView is the public account summary.
type AccountView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance string `json:"balance"`
}

// TransactionView mirrors one ledger entry with resolved parties and the
// role relative to the requesting account.
type TransactionView struct {
	ID            int64        `json:"id"`
	SenderID      int64        `json:"sender_id"`
	ReceiverID    int64        `json:"receiver_id"`
	Sender        *AccountView `json:"sender,omitempty"`
	Receiver      *AccountView `json:"receiver,omitempty"`
	Amount        string       `json:"amount"`
	CommissionFee string       `json:"commission_fee"`
	Type          domain.Role  `json:"type,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func accountView(a *domain.Account) *AccountView {
	if a == nil {
		return nil
	}
	return &AccountView{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		Balance: a.Balance.StringFixed(2),
	}
}

func transactionView(t *domain.Transaction, viewerID int64) TransactionView {
	return TransactionView{
		ID:            t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Sender:        accountView(t.Sender),
		Receiver:      accountView(t.Receiver),
		Amount:        t.Amount.StringFixed(2),
		CommissionFee: t.CommissionFee.StringFixed(2),
		Type:          t.RoleFor(viewerID),
		CreatedAt:     t.CreatedAt,
	}
}

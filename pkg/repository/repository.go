// Package repository defines the data access contracts the services depend
// on. The gorm implementation lives in infra/repository; tests use the
// in-memory implementation from internal/fixtures.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
)

// PageSize is the fixed page size for transaction listings.
const PageSize = 20

// AccountRepository provides account reads and the narrow set of writes the
// engines are allowed to perform.
type AccountRepository interface {
	Get(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error

	// GetPairForUpdate loads both accounts under exclusive row locks,
	// acquired in ascending id order regardless of transfer direction.
	// Only meaningful inside a UnitOfWork.Do scope.
	GetPairForUpdate(ctx context.Context, senderID, receiverID int64) (sender, receiver *domain.Account, err error)

	// UpdateBalances persists the balances of the given accounts.
	UpdateBalances(ctx context.Context, accounts ...*domain.Account) error

	// SetFlag suspends the account with a reason; ClearFlag lifts the
	// suspension. Reserved for the verification engine.
	SetFlag(ctx context.Context, id int64, at time.Time, reason string) error
	ClearFlag(ctx context.Context, id int64) error

	// ListActiveIDs returns the ids of all non-deleted accounts.
	ListActiveIDs(ctx context.Context) ([]int64, error)

	// ListFlagged returns flagged accounts ordered by flagged_at descending.
	ListFlagged(ctx context.Context) ([]*domain.Account, error)
}

// TransactionRepository provides append and read access to the ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error

	// ListForAccount returns entries where the account is sender or
	// receiver, newest first, with both parties resolved. page is 1-based.
	ListForAccount(ctx context.Context, accountID int64, page int) ([]*domain.Transaction, error)

	// IncomingTotal is the sum of amounts received by the account over its
	// full ledger history; OutgoingTotal the sum of amount+commission_fee
	// sent. Both return zero for an empty history.
	IncomingTotal(ctx context.Context, accountID int64) (decimal.Decimal, error)
	OutgoingTotal(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// UnitOfWork groups repository access with a transaction boundary. Reads
// outside Do use plain non-locking sessions; everything inside the Do
// callback shares one database transaction and commits or rolls back as a
// unit.
type UnitOfWork interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
}

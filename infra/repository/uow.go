// Package repository implements the data access contracts over gorm.
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/walletguard/walletd/pkg/repository"
)

// UoW provides repository access and a transaction boundary over one
// *gorm.DB. Outside Do, repositories read with plain sessions; inside Do
// every repository shares the enclosing database transaction, so row locks
// taken by GetPairForUpdate hold until commit or rollback.
type UoW struct {
	db *gorm.DB
}

// NewUoW wraps the given connection.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

func (u *UoW) Accounts() repository.AccountRepository {
	return NewAccountRepository(u.db)
}

func (u *UoW) Transactions() repository.TransactionRepository {
	return NewTransactionRepository(u.db)
}

// Do runs fn inside a database transaction. Returning an error rolls back
// every mutation made through the passed unit of work.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

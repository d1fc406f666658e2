package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walletguard/walletd/infra/repository/model"
	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/repository"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a gorm-backed account repository on the given
// session, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*domain.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return a.ToDomain(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return a.ToDomain(), nil
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	row := model.Account{
		Name:     a.Name,
		Email:    a.Email,
		Password: a.PasswordHash,
		Balance:  a.Balance,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return nil
}

// GetPairForUpdate locks both rows with SELECT ... FOR UPDATE, always in
// ascending id order so two opposite-direction transfers over the same pair
// cannot deadlock. Values read before these locks must not be trusted.
func (r *accountRepository) GetPairForUpdate(ctx context.Context, senderID, receiverID int64) (*domain.Account, *domain.Account, error) {
	lo, hi := senderID, receiverID
	if hi < lo {
		lo, hi = hi, lo
	}

	lockOne := func(id int64) (*model.Account, error) {
		var a model.Account
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return &a, err
	}

	first, err := lockOne(lo)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockOne(hi)
	if err != nil {
		return nil, nil, err
	}

	sender, receiver := first, second
	if sender.ID != senderID {
		sender, receiver = second, first
	}
	return sender.ToDomain(), receiver.ToDomain(), nil
}

func (r *accountRepository) UpdateBalances(ctx context.Context, accounts ...*domain.Account) error {
	for _, a := range accounts {
		err := r.db.WithContext(ctx).
			Model(&model.Account{}).
			Where("id = ?", a.ID).
			Update("balance", a.Balance).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *accountRepository) SetFlag(ctx context.Context, id int64, at time.Time, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged_at": at, "flagged_reason": reason}).Error
}

func (r *accountRepository) ClearFlag(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged_at": nil, "flagged_reason": nil}).Error
}

func (r *accountRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *accountRepository) ListFlagged(ctx context.Context) ([]*domain.Account, error) {
	var rows []model.Account
	err := r.db.WithContext(ctx).
		Where("flagged_at IS NOT NULL").
		Order("flagged_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Account, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

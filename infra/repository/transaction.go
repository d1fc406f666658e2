package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/walletguard/walletd/infra/repository/model"
	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/repository"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a gorm-backed ledger repository on the
// given session.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	row := model.Transaction{
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount,
		CommissionFee: t.CommissionFee,
		CreatedAt:     t.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

func (r *transactionRepository) ListForAccount(ctx context.Context, accountID int64, page int) ([]*domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Order("created_at DESC, id DESC").
		Limit(repository.PageSize).
		Offset((page - 1) * repository.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *transactionRepository) IncomingTotal(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("receiver_id = ?", accountID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *transactionRepository) OutgoingTotal(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("sender_id = ?", accountID).
		Select("COALESCE(SUM(amount + commission_fee), 0)").
		Scan(&total).Error
	return total, err
}

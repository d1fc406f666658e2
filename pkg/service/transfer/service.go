// Package transfer implements the transfer engine and its asynchronous job
// processor. The engine moves money between two accounts atomically; the
// processor wraps one transfer attempt with bounded retry, a per-attempt
// timeout and a terminal failure notification.
package transfer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/domain/events"
	"github.com/walletguard/walletd/pkg/eventbus"
	"github.com/walletguard/walletd/pkg/repository"
)

// Service is the transfer engine. It performs a single transfer attempt
// inside one database transaction; retry belongs to the Processor.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a transfer engine.
func New(uow repository.UnitOfWork, bus eventbus.Bus, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, logger: logger.With("service", "transfer")}
}

// Transfer atomically debits amount+fee from the sender, credits amount to
// the receiver and appends one ledger entry. Both account rows are locked in
// ascending id order and every check runs against the locked, re-read state;
// any failure rolls the whole unit back. On commit, one transaction.created
// notification is emitted per involved party.
func (s *Service) Transfer(
	ctx context.Context,
	senderID, receiverID int64,
	amount, fee decimal.Decimal,
) (*domain.Transaction, error) {
	if senderID == receiverID {
		return nil, domain.ErrSameAccount
	}

	var (
		txn      *domain.Transaction
		sender   *domain.Account
		receiver *domain.Account
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		sender, receiver, err = uow.Accounts().GetPairForUpdate(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if sender.Flagged() {
			return domain.NewFlaggedError(sender.FlaggedReason)
		}
		if receiver.Flagged() {
			return domain.NewFlaggedError(domain.ReceiverFlaggedMessage)
		}
		total := amount.Add(fee)
		if sender.Balance.LessThan(total) {
			return domain.ErrInsufficientBalance
		}

		sender.Balance = sender.Balance.Sub(total)
		receiver.Balance = receiver.Balance.Add(amount)
		if err := uow.Accounts().UpdateBalances(ctx, sender, receiver); err != nil {
			return err
		}

		txn = &domain.Transaction{
			SenderID:      senderID,
			ReceiverID:    receiverID,
			Amount:        amount,
			CommissionFee: fee,
			CreatedAt:     time.Now(),
		}
		return uow.Transactions().Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer committed",
		"transaction_id", txn.ID,
		"sender_id", senderID,
		"receiver_id", receiverID,
		"amount", amount.StringFixed(2),
		"commission_fee", fee.StringFixed(2),
	)
	s.emitCreated(ctx, txn, sender, receiver)
	return txn, nil
}

// emitCreated publishes one notification per involved party, after commit.
func (s *Service) emitCreated(ctx context.Context, txn *domain.Transaction, sender, receiver *domain.Account) {
	base := events.TransactionCreated{
		TransactionID: txn.ID,
		SenderID:      txn.SenderID,
		ReceiverID:    txn.ReceiverID,
		Sender:        events.PartyOf(sender),
		Receiver:      events.PartyOf(receiver),
		Amount:        txn.Amount,
		CommissionFee: txn.CommissionFee,
		CreatedAt:     txn.CreatedAt,
	}

	debit := base
	debit.ID = uuid.New()
	debit.AccountID = txn.SenderID
	debit.Role = domain.RoleDebit
	if err := s.bus.Publish(ctx, debit); err != nil {
		s.logger.Error("failed to publish transaction.created", "error", err, "account_id", txn.SenderID)
	}

	credit := base
	credit.ID = uuid.New()
	credit.AccountID = txn.ReceiverID
	credit.Role = domain.RoleCredit
	if err := s.bus.Publish(ctx, credit); err != nil {
		s.logger.Error("failed to publish transaction.created", "error", err, "account_id", txn.ReceiverID)
	}
}

package transfer

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/walletguard/walletd/internal/fixtures"
	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/domain/events"
	"github.com/walletguard/walletd/pkg/eventbus"
)

// eventRecorder captures published events; handlers may run from multiple
// goroutines in the concurrency tests.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) byType(eventType string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type ServiceTestSuite struct {
	suite.Suite
	uow      *fixtures.MemoryUoW
	bus      *eventbus.Memory
	recorder *eventRecorder
	svc      *Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.uow = fixtures.NewMemoryUoW()
	s.bus = eventbus.NewMemory()
	s.recorder = &eventRecorder{}
	s.bus.Subscribe(events.TypeTransactionCreated, s.recorder.record)
	s.bus.Subscribe(events.TypeTransferFailed, s.recorder.record)
	s.svc = New(s.uow, s.bus, slog.Default())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *ServiceTestSuite) TestSuccessfulTransfer() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "500")

	txn, err := s.svc.Transfer(context.Background(), sender.ID, receiver.ID, dec("100"), dec("10"))
	s.Require().NoError(err)
	s.Require().NotNil(txn)

	s.Equal("890.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
	s.Equal("600.00", s.uow.Account(receiver.ID).Balance.StringFixed(2))
	s.Equal(1, s.uow.TransactionCount())
	s.Equal("100.00", txn.Amount.StringFixed(2))
	s.Equal("10.00", txn.CommissionFee.StringFixed(2))
}

func (s *ServiceTestSuite) TestEmitsOneNotificationPerParty() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "500")

	txn, err := s.svc.Transfer(context.Background(), sender.ID, receiver.ID, dec("100"), dec("10"))
	s.Require().NoError(err)

	created := s.recorder.byType(events.TypeTransactionCreated)
	s.Require().Len(created, 2)

	debit := created[0].(events.TransactionCreated)
	credit := created[1].(events.TransactionCreated)
	s.Equal(sender.ID, debit.AccountID)
	s.Equal(domain.RoleDebit, debit.Role)
	s.Equal(receiver.ID, credit.AccountID)
	s.Equal(domain.RoleCredit, credit.Role)
	s.Equal(txn.ID, debit.TransactionID)
	s.Equal("890.00", debit.Sender.Balance.StringFixed(2))
	s.Equal("600.00", debit.Receiver.Balance.StringFixed(2))
}

func (s *ServiceTestSuite) TestSameAccountRejected() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")

	_, err := s.svc.Transfer(context.Background(), sender.ID, sender.ID, dec("10"), dec("1"))
	s.Require().ErrorIs(err, domain.ErrSameAccount)
	s.Equal(0, s.uow.TransactionCount())
}

func (s *ServiceTestSuite) TestMissingAccountRejected() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")

	_, err := s.svc.Transfer(context.Background(), sender.ID, 999, dec("10"), dec("1"))
	s.Require().ErrorIs(err, domain.ErrAccountNotFound)
	s.Equal(0, s.uow.TransactionCount())
	s.Equal("1000.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
}

func (s *ServiceTestSuite) TestFlaggedSenderRejectedWithStoredReason() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "500")
	s.Require().NoError(s.uow.Accounts().SetFlag(context.Background(), sender.ID, time.Now(), "Balance mismatch detected. Expected: $90.00, Actual: $100.00, Discrepancy: $10.00"))

	_, err := s.svc.Transfer(context.Background(), sender.ID, receiver.ID, dec("10"), dec("1"))
	s.Require().ErrorIs(err, domain.ErrAccountFlagged)
	s.Contains(err.Error(), "Balance mismatch detected")
	s.Equal("1000.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
	s.Equal(0, s.uow.TransactionCount())
}

func (s *ServiceTestSuite) TestFlaggedReceiverRejectedWithFixedMessage() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "500")
	s.Require().NoError(s.uow.Accounts().SetFlag(context.Background(), receiver.ID, time.Now(), "whatever"))

	_, err := s.svc.Transfer(context.Background(), sender.ID, receiver.ID, dec("10"), dec("1"))
	s.Require().ErrorIs(err, domain.ErrAccountFlagged)
	s.Equal(domain.ReceiverFlaggedMessage, err.Error())
	s.Equal(0, s.uow.TransactionCount())
}

func (s *ServiceTestSuite) TestSequentialTransfersExhaustBalance() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "150")
	first := s.uow.SeedAccount("Bob", "bob@example.com", "0")
	second := s.uow.SeedAccount("Carol", "carol@example.com", "0")

	_, err := s.svc.Transfer(context.Background(), sender.ID, first.ID, dec("100"), dec("10"))
	s.Require().NoError(err)
	s.Equal("40.00", s.uow.Account(sender.ID).Balance.StringFixed(2))

	_, err = s.svc.Transfer(context.Background(), sender.ID, second.ID, dec("50"), dec("5"))
	s.Require().ErrorIs(err, domain.ErrInsufficientBalance)
	s.Equal("40.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
	s.Equal(1, s.uow.TransactionCount())
}

func (s *ServiceTestSuite) TestConcurrentTransfersCannotDoubleSpend() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "150")
	first := s.uow.SeedAccount("Bob", "bob@example.com", "0")
	second := s.uow.SeedAccount("Carol", "carol@example.com", "0")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, receiverID := range []int64{first.ID, second.ID} {
		wg.Add(1)
		go func(rid int64) {
			defer wg.Done()
			_, err := s.svc.Transfer(context.Background(), sender.ID, rid, dec("100"), dec("10"))
			errs <- err
		}(receiverID)
	}
	wg.Wait()
	close(errs)

	var failures, successes int
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		failures++
		s.ErrorIs(err, domain.ErrInsufficientBalance)
	}
	s.Equal(1, successes)
	s.Equal(1, failures)
	s.Equal(successes, s.uow.TransactionCount())
	s.Equal("40.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
}

func (s *ServiceTestSuite) TestInfrastructureFailureRollsBack() {
	sender := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "500")
	s.uow.FailNext = errTransient

	_, err := s.svc.Transfer(context.Background(), sender.ID, receiver.ID, dec("100"), dec("10"))
	s.Require().Error(err)
	s.False(domain.IsDomainErr(err))
	s.Equal("1000.00", s.uow.Account(sender.ID).Balance.StringFixed(2))
	s.Equal("500.00", s.uow.Account(receiver.ID).Balance.StringFixed(2))
	s.Equal(0, s.uow.TransactionCount())
}

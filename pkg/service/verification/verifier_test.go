package verification

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/walletguard/walletd/internal/fixtures"
)

type VerifierTestSuite struct {
	suite.Suite
	uow      *fixtures.MemoryUoW
	verifier *Verifier
}

func (s *VerifierTestSuite) SetupTest() {
	s.uow = fixtures.NewMemoryUoW()
	s.verifier = NewVerifier(s.uow, slog.Default())
}

func TestVerifierTestSuite(t *testing.T) {
	suite.Run(t, new(VerifierTestSuite))
}

func (s *VerifierTestSuite) TestFlagsDiscrepancy() {
	// Funded with 1000 on the ledger, then one outgoing entry of 500+25
	// whose debit never reached the stored balance: expected 475 against a
	// stored 1000.
	payer := s.uow.SeedAccount("Treasury", "treasury@example.com", "0")
	acct := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "0")
	s.uow.SeedTransaction(payer.ID, acct.ID, "1000", "0")
	s.uow.SeedTransaction(acct.ID, receiver.ID, "500", "25")

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))

	flagged := s.uow.Account(acct.ID)
	s.Require().NotNil(flagged.FlaggedAt)
	s.Contains(flagged.FlaggedReason, "Balance mismatch detected")
	s.Contains(flagged.FlaggedReason, "Expected: $475.00")
	s.Contains(flagged.FlaggedReason, "Actual: $1000.00")
	s.Contains(flagged.FlaggedReason, "Discrepancy: $525.00")
}

func (s *VerifierTestSuite) TestConsistentBalanceNotFlagged() {
	payer := s.uow.SeedAccount("Payer", "payer@example.com", "0")
	acct := s.uow.SeedAccount("Alice", "alice@example.com", "90")
	s.uow.SeedTransaction(payer.ID, acct.ID, "100", "0")
	s.uow.SeedTransaction(acct.ID, payer.ID, "10", "0")

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))
	s.Nil(s.uow.Account(acct.ID).FlaggedAt)
}

func (s *VerifierTestSuite) TestToleranceAbsorbsRounding() {
	payer := s.uow.SeedAccount("Payer", "payer@example.com", "0")
	acct := s.uow.SeedAccount("Alice", "alice@example.com", "100.01")
	s.uow.SeedTransaction(payer.ID, acct.ID, "100", "0")

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))
	s.Nil(s.uow.Account(acct.ID).FlaggedAt, "a 0.01 difference is within tolerance")
}

func (s *VerifierTestSuite) TestUnflagsWhenBalanceCorrected() {
	payer := s.uow.SeedAccount("Payer", "payer@example.com", "0")
	acct := s.uow.SeedAccount("Alice", "alice@example.com", "100")
	s.uow.SeedTransaction(payer.ID, acct.ID, "100", "0")
	at := time.Now()
	s.Require().NoError(s.uow.Accounts().SetFlag(context.Background(), acct.ID, at, "stale flag"))

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))

	cleared := s.uow.Account(acct.ID)
	s.Nil(cleared.FlaggedAt)
	s.Empty(cleared.FlaggedReason)
}

func (s *VerifierTestSuite) TestIdempotent() {
	acct := s.uow.SeedAccount("Alice", "alice@example.com", "1000")
	receiver := s.uow.SeedAccount("Bob", "bob@example.com", "0")
	s.uow.SeedTransaction(acct.ID, receiver.ID, "500", "25")

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))
	firstReason := s.uow.Account(acct.ID).FlaggedReason

	s.Require().NoError(s.verifier.VerifyAccount(context.Background(), acct.ID))
	s.Equal(firstReason, s.uow.Account(acct.ID).FlaggedReason)
	s.NotNil(s.uow.Account(acct.ID).FlaggedAt)
}

func (s *VerifierTestSuite) TestMissingAccountIsNoOp() {
	s.NoError(s.verifier.VerifyAccount(context.Background(), 42))
}

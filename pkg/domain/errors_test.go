package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlaggedErrorMatchesSentinel(t *testing.T) {
	err := NewFlaggedError("Balance mismatch detected")
	assert.True(t, errors.Is(err, ErrAccountFlagged))
	assert.Equal(t, "Balance mismatch detected", err.Error())

	wrapped := fmt.Errorf("transfer denied: %w", err)
	assert.True(t, errors.Is(wrapped, ErrAccountFlagged))
}

func TestFlaggedErrorDefaultsReason(t *testing.T) {
	err := NewFlaggedError("")
	assert.Equal(t, DefaultFlaggedMessage, err.Error())
}

func TestIsDomainErr(t *testing.T) {
	for _, err := range []error{
		ErrAccountNotFound,
		ErrSameAccount,
		ErrInsufficientBalance,
		NewFlaggedError("x"),
		fmt.Errorf("wrapped: %w", ErrInsufficientBalance),
	} {
		assert.True(t, IsDomainErr(err), err)
	}
	assert.False(t, IsDomainErr(errors.New("connection refused")))
	assert.False(t, IsDomainErr(nil))
}

func TestRoleFor(t *testing.T) {
	txn := &Transaction{SenderID: 1, ReceiverID: 2}
	assert.Equal(t, RoleDebit, txn.RoleFor(1))
	assert.Equal(t, RoleCredit, txn.RoleFor(2))
	assert.Equal(t, Role(""), txn.RoleFor(3))
}

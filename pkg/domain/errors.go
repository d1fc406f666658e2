package domain

import "errors"

var (
	// ErrAccountNotFound is returned when a referenced account does not exist
	// or has been soft-deleted.
	ErrAccountNotFound = errors.New("sender or receiver not found")

	// ErrSameAccount is returned when a transfer names the same account on
	// both sides.
	ErrSameAccount = errors.New("sender and receiver cannot be the same")

	// ErrInsufficientBalance is returned when the sender cannot cover
	// amount plus commission fee. The text is shown to the user as-is.
	ErrInsufficientBalance = errors.New("sender does not have enough balance")

	// ErrAccountFlagged marks any flagged-account denial. Match with
	// errors.Is; the concrete error carries the user-facing reason.
	ErrAccountFlagged = errors.New("account is flagged")
)

const (
	// DefaultFlaggedMessage is used when a flagged sender has no stored reason.
	DefaultFlaggedMessage = "Your account has been flagged due to balance discrepancy. Please contact support."

	// ReceiverFlaggedMessage is always used for a flagged receiver; the stored
	// reason belongs to the other party and is never disclosed.
	ReceiverFlaggedMessage = "Receiver cannot receive funds. Please contact support."
)

// FlaggedError is the concrete error for flagged-account denials.
type FlaggedError struct {
	Reason string
}

func (e *FlaggedError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrAccountFlagged) match any FlaggedError.
func (e *FlaggedError) Is(target error) bool { return target == ErrAccountFlagged }

// NewFlaggedError builds a FlaggedError, falling back to the default message
// when no stored reason exists.
func NewFlaggedError(reason string) *FlaggedError {
	if reason == "" {
		reason = DefaultFlaggedMessage
	}
	return &FlaggedError{Reason: reason}
}

// IsDomainErr reports whether err belongs to the transfer error taxonomy, as
// opposed to a transient infrastructure failure. Domain errors are never
// retried and their message is safe to surface to the user.
func IsDomainErr(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrAccountFlagged)
}

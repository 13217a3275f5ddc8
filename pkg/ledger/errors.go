package ledger

import "errors"

var (
	// ErrSelfTransfer is returned when the sender and receiver resolve to
	// the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrRecipientNotFound is returned when the destination account number
	// does not resolve to an account.
	ErrRecipientNotFound = errors.New("recipient account not found")
	// ErrAccountClosed is returned when either party is not active.
	ErrAccountClosed = errors.New("account is not active")
	// ErrDailyLimitExceeded is returned when a transfer would push the
	// sender past the rolling daily ceiling.
	ErrDailyLimitExceeded = errors.New("daily transfer limit exceeded")
	// ErrInvalidAmount is returned for non-positive transfer amounts.
	ErrInvalidAmount = errors.New("transfer amount must be positive")
	// ErrForbidden is returned when the caller does not own the transaction
	// it is trying to act on.
	ErrForbidden = errors.New("transaction belongs to another account")
)

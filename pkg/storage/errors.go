package storage

import "errors"

// ErrInsufficientFunds is returned when a debit would drive an account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNotFound is returned when a requested account or transaction does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateTransactionID is returned when appending a transaction whose id already exists in the log.
var ErrDuplicateTransactionID = errors.New("duplicate transaction id")

// ErrInvalidTransition is returned when a status update is not legal from the stored status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConcurrencyConflict is returned when an optimistic version check fails because of a concurrent writer.
var ErrConcurrencyConflict = errors.New("concurrent modification conflict")

// ErrAccountExists is returned when creating an account whose id or number is already taken.
var ErrAccountExists = errors.New("account already exists")

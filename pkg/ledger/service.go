// Package ledger implements the transfer engine: precondition checks,
// limit enforcement, the scheduled-transfer lifecycle and the admin
// override, all on top of the storage layer's atomic commit primitives.
package ledger

import (
	"context"
	"time"

	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// TransferInput carries a transfer request into the engine. Amount is in
// minor units (cents) and must be positive.
type TransferInput struct {
	SenderAccountId       string
	ReceiverAccountNumber string
	Amount                int64
	Description           string
	ScheduledAt           *time.Time
	Metadata              models.Metadata
}

// Service is the engine surface the HTTP handlers and lambdas consume.
type Service interface {
	// SubmitTransfer runs the precondition pipeline and either commits the
	// transfer synchronously or persists a scheduled debit leg for later
	// activation. The returned transaction is the sender-side leg.
	SubmitTransfer(ctx context.Context, input TransferInput) (*models.Transaction, error)

	// ActivateScheduled moves a scheduled transfer to pending, re-runs the
	// precondition pipeline and settles or fails it. Safe to call more than
	// once for the same transaction.
	ActivateScheduled(ctx context.Context, txID string) error

	// CancelTransaction cancels a pending transfer owned by the caller.
	CancelTransaction(ctx context.Context, callerAccountID, txID string) (*models.Transaction, error)

	// AdminForceStatus forces a pending transfer into a terminal status on
	// behalf of an administrator.
	AdminForceStatus(ctx context.Context, txID string, newStatus models.TransactionStatus, actorID string) (*models.Transaction, error)

	// GetBalance returns the account with its current balance.
	GetBalance(ctx context.Context, accountID string) (*models.Account, error)

	// ListTransactions returns the transactions owned by an account.
	ListTransactions(ctx context.Context, accountID string, filter storage.TransactionFilter) ([]models.Transaction, error)
}

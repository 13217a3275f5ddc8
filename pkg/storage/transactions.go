package storage

import (
	"context"
	"time"

	"github.com/sam/retail-ledger/pkg/models"
)

// TransactionFilter narrows the results of a transaction listing.
// Zero values mean "no constraint".
type TransactionFilter struct {
	Status models.TransactionStatus
	Type   models.TransactionType
	Since  time.Time
}

// Matches reports whether a transaction satisfies the filter.
func (f TransactionFilter) Matches(tx *models.Transaction) bool {
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && tx.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// TransactionReader defines the interface for reading the transaction log.
type TransactionReader interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// ListTransactionsByAccountID retrieves the transactions owned by an account.
	ListTransactionsByAccountID(ctx context.Context, accountID string, filter TransactionFilter) ([]models.Transaction, error)

	// GetStuckTransactions retrieves transactions that have sat in PENDING for longer than maxAge.
	GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error)

	// GetDueScheduledTransactions retrieves SCHEDULED transactions whose scheduled time has arrived.
	GetDueScheduledTransactions(ctx context.Context) ([]models.Transaction, error)
}

// TransactionLog defines the interface for writing the durable transaction record.
type TransactionLog interface {
	// AppendTransaction writes a new transaction record. It fails with
	// ErrDuplicateTransactionID if the id already exists.
	AppendTransaction(ctx context.Context, tx *models.Transaction) error

	// UpdateTransactionStatus transitions a transaction from one status to
	// another. It fails with ErrInvalidTransition if the stored status does
	// not match the expected current status.
	UpdateTransactionStatus(ctx context.Context, txID string, from, to models.TransactionStatus, note string) error
}

// TransactionStore combines the reader and log interfaces.
type TransactionStore interface {
	TransactionReader
	TransactionLog
}

package storage

import (
	"context"

	"github.com/sam/retail-ledger/pkg/models"
)

// TransferCommitter defines the privileged interface for applying a transfer
// to the ledger. Each method is a single atomic unit across the transaction
// log and both account balances: either every effect commits or none do.
// A log record must never exist without its balance change, and vice versa.
type TransferCommitter interface {
	// CommitTransfer applies a synchronous transfer: it appends both legs
	// (already in COMPLETED status), debits the sender by the amount, and
	// credits the receiver by the net amount, all within one atomic unit.
	CommitTransfer(ctx context.Context, debit, credit *models.Transaction) error

	// SettleTransaction finalizes a transfer whose debit leg already exists
	// as PENDING in the log: the debit leg moves to COMPLETED, the credit
	// leg is appended, and both balances are adjusted, all within one
	// atomic unit. The credit append is conditional on its id, so settling
	// the same transfer twice creates the mirrored leg exactly once.
	SettleTransaction(ctx context.Context, debit, credit *models.Transaction) error
}

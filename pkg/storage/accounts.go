package storage

import (
	"context"

	"github.com/sam/retail-ledger/pkg/models"
)

// AccountStore defines the interface for managing accounts.
type AccountStore interface {
	// CreateAccount creates a new account with its opening balance.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetAccount retrieves an account by its id.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// GetAccountByNumber retrieves an account by its external-facing account number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error)

	// ListAccounts retrieves all accounts.
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// CloseAccount marks an account as closed. Accounts are never deleted.
	CloseAccount(ctx context.Context, accountID string) error
}

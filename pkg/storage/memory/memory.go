// Package memory provides an in-process Storage implementation used in
// tests and local development. Balance mutation is serialized per account:
// the commit operations take the mutex of every involved account, in sorted
// id order, and apply the log append and the balance change while holding
// them. That gives the same all-or-nothing guarantee the DynamoDB store
// gets from TransactWriteItems.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// Store implements the Storage interface with in-process maps.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	numbers  map[string]string // account number -> account id
	txs      map[string]*models.Transaction
	locks    map[string]*sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		numbers:  make(map[string]string),
		txs:      make(map[string]*models.Transaction),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// accountLock returns the mutex serializing balance mutation for an account.
func (s *Store) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

// lockAccounts acquires the per-account mutexes in sorted id order, so two
// transfers touching the same pair of accounts can never deadlock.
func (s *Store) lockAccounts(ids ...string) func() {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		l := s.accountLock(id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// CreateAccount creates a new account.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.Id == "" {
		account.Id = uuid.New().String()
	}
	if _, exists := s.accounts[account.Id]; exists {
		return nil, fmt.Errorf("account %s: %w", account.Id, storage.ErrAccountExists)
	}
	if _, taken := s.numbers[account.AccountNumber]; taken {
		return nil, fmt.Errorf("account number %s: %w", account.AccountNumber, storage.ErrAccountExists)
	}

	account.Status = models.AccountActive
	account.Version = 1
	account.CreatedAt = time.Now()

	stored := *account
	s.accounts[account.Id] = &stored
	s.numbers[account.AccountNumber] = account.Id
	return account, nil
}

// GetAccount retrieves an account by its id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
	}
	copied := *account
	return &copied, nil
}

// GetAccountByNumber retrieves an account by its external account number.
func (s *Store) GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.numbers[accountNumber]
	if !ok {
		return nil, fmt.Errorf("account number %s: %w", accountNumber, storage.ErrNotFound)
	}
	copied := *s.accounts[id]
	return &copied, nil
}

// ListAccounts retrieves all accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

// CloseAccount marks an account as closed.
func (s *Store) CloseAccount(ctx context.Context, accountID string) error {
	unlock := s.lockAccounts(accountID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok || account.Status == models.AccountClosed {
		return fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
	}
	account.Status = models.AccountClosed
	account.Version++
	return nil
}

// GetTransaction retrieves a transaction by its ID.
func (s *Store) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, storage.ErrNotFound)
	}
	copied := *tx
	return &copied, nil
}

// ListTransactionsByAccountID retrieves the transactions owned by an account.
func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, filter storage.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Transaction
	for _, tx := range s.txs {
		if tx.AccountId != accountID {
			continue
		}
		if !filter.Matches(tx) {
			continue
		}
		result = append(result, *tx)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetStuckTransactions retrieves PENDING transactions older than maxAge.
func (s *Store) GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-maxAge)
	var result []models.Transaction
	for _, tx := range s.txs {
		if tx.Status == models.PENDING && tx.CreatedAt.Before(cutoff) {
			result = append(result, *tx)
		}
	}
	return result, nil
}

// GetDueScheduledTransactions retrieves SCHEDULED transactions whose
// scheduled time has arrived.
func (s *Store) GetDueScheduledTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []models.Transaction
	for _, tx := range s.txs {
		if tx.Status == models.SCHEDULED && tx.ScheduledAt != nil && !tx.ScheduledAt.After(now) {
			result = append(result, *tx)
		}
	}
	return result, nil
}

// AppendTransaction writes a single transaction record with no balance effect.
func (s *Store) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txs[tx.Id]; exists {
		return fmt.Errorf("transaction %s: %w", tx.Id, storage.ErrDuplicateTransactionID)
	}
	stored := *tx
	s.txs[tx.Id] = &stored
	return nil
}

// UpdateTransactionStatus transitions a transaction between statuses. The
// check against the expected current status and the write happen under one
// lock, so concurrent updaters cannot both win.
func (s *Store) UpdateTransactionStatus(ctx context.Context, txID string, from, to models.TransactionStatus, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[txID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", txID, storage.ErrNotFound)
	}
	if tx.Status != from {
		return fmt.Errorf("transaction %s is %s, not %s: %w", txID, tx.Status, from, storage.ErrInvalidTransition)
	}
	tx.Status = to
	tx.UpdatedAt = time.Now()
	if note != "" {
		tx.StatusNote = note
	}
	return nil
}

// CommitTransfer applies a synchronous transfer: both legs appended and both
// balances adjusted while holding both account locks.
func (s *Store) CommitTransfer(ctx context.Context, debit, credit *models.Transaction) error {
	unlock := s.lockAccounts(debit.AccountId, credit.AccountId)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[debit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrNotFound)
	}
	receiver, ok := s.accounts[credit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", credit.AccountId, storage.ErrNotFound)
	}
	if _, exists := s.txs[debit.Id]; exists {
		return fmt.Errorf("transaction %s: %w", debit.Id, storage.ErrDuplicateTransactionID)
	}
	if _, exists := s.txs[credit.Id]; exists {
		return fmt.Errorf("transaction %s: %w", credit.Id, storage.ErrDuplicateTransactionID)
	}
	if sender.Balance < debit.Amount {
		return fmt.Errorf("account %s: %w", sender.Id, storage.ErrInsufficientFunds)
	}

	sender.Balance -= debit.Amount
	sender.Version++
	receiver.Balance += credit.NetAmount()
	receiver.Version++

	debitCopy := *debit
	creditCopy := *credit
	s.txs[debit.Id] = &debitCopy
	s.txs[credit.Id] = &creditCopy
	return nil
}

// SettleTransaction finalizes a transfer whose debit leg is PENDING in the log.
func (s *Store) SettleTransaction(ctx context.Context, debit, credit *models.Transaction) error {
	unlock := s.lockAccounts(debit.AccountId, credit.AccountId)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.txs[debit.Id]
	if !ok {
		return fmt.Errorf("transaction %s: %w", debit.Id, storage.ErrNotFound)
	}
	if stored.Status != models.PENDING {
		return fmt.Errorf("transaction %s is not pending: %w", debit.Id, storage.ErrInvalidTransition)
	}
	if _, exists := s.txs[credit.Id]; exists {
		return fmt.Errorf("transfer %s credit leg: %w", debit.TransferId, storage.ErrDuplicateTransactionID)
	}

	sender, ok := s.accounts[debit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrNotFound)
	}
	receiver, ok := s.accounts[credit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", credit.AccountId, storage.ErrNotFound)
	}
	if sender.Balance < debit.Amount {
		return fmt.Errorf("account %s: %w", sender.Id, storage.ErrInsufficientFunds)
	}

	now := time.Now()
	sender.Balance -= debit.Amount
	sender.Version++
	receiver.Balance += credit.NetAmount()
	receiver.Version++

	stored.Status = models.COMPLETED
	stored.CompletedAt = &now
	stored.UpdatedAt = now

	creditCopy := *credit
	creditCopy.Status = models.COMPLETED
	creditCopy.CompletedAt = &now
	s.txs[credit.Id] = &creditCopy
	return nil
}

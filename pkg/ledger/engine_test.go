package ledger

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
	"github.com/sam/retail-ledger/pkg/storage/memory"
)

type fakeScheduler struct {
	mu    sync.Mutex
	calls []struct {
		TxID  string
		Delay time.Duration
	}
}

func (f *fakeScheduler) ScheduleActivation(ctx context.Context, txID string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, struct {
		TxID  string
		Delay time.Duration
	}{txID, delay})
	return nil
}

func newTestEngine(cfg Config) (*Engine, *memory.Store, *fakeScheduler) {
	store := memory.New()
	sched := &fakeScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, sched, nil, logger, cfg), store, sched
}

func createAccount(t *testing.T, store *memory.Store, number string, balance int64) *models.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), &models.Account{
		Name:          "Holder " + number,
		AccountNumber: number,
		Balance:       balance,
		Currency:      "USD",
	})
	require.NoError(t, err)
	return account
}

// appendPendingTransfer seeds a pending debit leg directly, the state a
// scheduled transfer is in after activation but before settlement.
func appendPendingTransfer(t *testing.T, store *memory.Store, sender, receiver *models.Account, amount int64) *models.Transaction {
	t.Helper()
	transferID := models.NewTransferID()
	now := time.Now()
	debit := &models.Transaction{
		Id:         models.DebitLegID(transferID),
		TransferId: transferID,
		AccountId:  sender.Id,
		Type:       models.TypeDebit,
		Category:   models.CategoryTransfer,
		Amount:     amount,
		Currency:   "USD",
		Status:     models.PENDING,
		Sender:     models.Party{AccountId: sender.Id, AccountNumber: sender.AccountNumber, Name: sender.Name},
		Receiver:   models.Party{AccountId: receiver.Id, AccountNumber: receiver.AccountNumber, Name: receiver.Name},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.AppendTransaction(context.Background(), debit))
	return debit
}

func balanceOf(t *testing.T, store *memory.Store, accountID string) int64 {
	t.Helper()
	account, err := store.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance
}

func TestSubmitTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "1000001", 10000)
		receiver := createAccount(t, store, "1000002", 0)

		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
			Description:           "rent share",
		})
		require.NoError(t, err)

		assert.Equal(t, models.COMPLETED, debit.Status)
		assert.Equal(t, models.TypeDebit, debit.Type)
		require.NotNil(t, debit.CompletedAt)
		assert.Equal(t, int64(7000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(3000), balanceOf(t, store, receiver.Id))

		credit, err := store.GetTransaction(ctx, models.CreditLegID(debit.TransferId))
		require.NoError(t, err)
		assert.Equal(t, models.TypeCredit, credit.Type)
		assert.Equal(t, receiver.Id, credit.AccountId)
		assert.Equal(t, debit.TransferId, credit.TransferId)
		require.NotNil(t, credit.CompletedAt)
	})

	t.Run("Fee Reduces Credited Amount", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TransferFee = 50
		engine, store, _ := newTestEngine(cfg)
		sender := createAccount(t, store, "1000003", 10000)
		receiver := createAccount(t, store, "1000004", 0)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(7000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(2950), balanceOf(t, store, receiver.Id))
	})

	t.Run("Insufficient Funds Leaves Balances Untouched", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "1000005", 100)
		receiver := createAccount(t, store, "1000006", 500)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                2000,
		})
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		assert.Equal(t, int64(100), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(500), balanceOf(t, store, receiver.Id))

		txs, err := store.ListTransactionsByAccountID(ctx, sender.Id, storage.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("Self Transfer Rejected", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "1000007", 1000)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: sender.AccountNumber,
			Amount:                100,
		})
		assert.ErrorIs(t, err, ErrSelfTransfer)
	})

	t.Run("Unknown Recipient", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "1000008", 1000)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: "9999999",
			Amount:                100,
		})
		assert.ErrorIs(t, err, ErrRecipientNotFound)
	})

	t.Run("Closed Recipient Rejected", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "1000009", 1000)
		receiver := createAccount(t, store, "1000010", 0)
		require.NoError(t, store.CloseAccount(ctx, receiver.Id))

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                100,
		})
		assert.ErrorIs(t, err, ErrAccountClosed)
	})

	t.Run("Non-Positive Amount Rejected", func(t *testing.T) {
		engine, _, _ := newTestEngine(DefaultConfig())
		_, err := engine.SubmitTransfer(ctx, TransferInput{Amount: 0})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestDailyLimit(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.DailyLimit = 50000

	t.Run("Exactly At Ceiling Is Allowed", func(t *testing.T) {
		engine, store, _ := newTestEngine(cfg)
		sender := createAccount(t, store, "2000001", 100000)
		receiver := createAccount(t, store, "2000002", 0)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                40000,
		})
		require.NoError(t, err)

		_, err = engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                10000,
		})
		assert.NoError(t, err)
	})

	t.Run("One Cent Over Is Rejected And Leaves Balances Untouched", func(t *testing.T) {
		engine, store, _ := newTestEngine(cfg)
		sender := createAccount(t, store, "2000003", 100000)
		receiver := createAccount(t, store, "2000004", 0)

		_, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                40000,
		})
		require.NoError(t, err)

		_, err = engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                10001,
		})
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)
		assert.Equal(t, int64(60000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(40000), balanceOf(t, store, receiver.Id))
	})
}

func TestConcurrentTransfers(t *testing.T) {
	ctx := context.Background()

	// N concurrent transfers of M against a balance of (N-1)*M: exactly one
	// must fail and the system must conserve total balance.
	const n = 5
	const m = int64(1000)

	engine, store, _ := newTestEngine(DefaultConfig())
	sender := createAccount(t, store, "3000001", (n-1)*m)
	receiver := createAccount(t, store, "3000002", 0)

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitTransfer(ctx, TransferInput{
				SenderAccountId:       sender.Id,
				ReceiverAccountNumber: receiver.AccountNumber,
				Amount:                m,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, int64(0), balanceOf(t, store, sender.Id))
	assert.Equal(t, (n-1)*m, balanceOf(t, store, receiver.Id))
}

func TestScheduledTransfers(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists Without Balance Effect And Enqueues Activation", func(t *testing.T) {
		engine, store, sched := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "4000001", 10000)
		receiver := createAccount(t, store, "4000002", 0)

		scheduledAt := time.Now().Add(time.Hour)
		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
			ScheduledAt:           &scheduledAt,
		})
		require.NoError(t, err)

		assert.Equal(t, models.SCHEDULED, debit.Status)
		assert.Equal(t, int64(10000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(0), balanceOf(t, store, receiver.Id))

		require.Len(t, sched.calls, 1)
		assert.Equal(t, debit.Id, sched.calls[0].TxID)
		assert.Greater(t, sched.calls[0].Delay, 59*time.Minute)
	})

	t.Run("Activation Settles The Transfer", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "4000003", 10000)
		receiver := createAccount(t, store, "4000004", 0)

		scheduledAt := time.Now().Add(time.Minute)
		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
			ScheduledAt:           &scheduledAt,
		})
		require.NoError(t, err)

		require.NoError(t, engine.ActivateScheduled(ctx, debit.Id))

		settled, err := store.GetTransaction(ctx, debit.Id)
		require.NoError(t, err)
		assert.Equal(t, models.COMPLETED, settled.Status)
		assert.Equal(t, int64(7000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(3000), balanceOf(t, store, receiver.Id))

		// Redelivered activation signal is a no-op.
		require.NoError(t, engine.ActivateScheduled(ctx, debit.Id))
		assert.Equal(t, int64(7000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(3000), balanceOf(t, store, receiver.Id))
	})

	t.Run("Activation Fails When Funds Ran Out", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "4000005", 5000)
		receiver := createAccount(t, store, "4000006", 0)
		drain := createAccount(t, store, "4000007", 0)

		scheduledAt := time.Now().Add(time.Minute)
		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
			ScheduledAt:           &scheduledAt,
		})
		require.NoError(t, err)

		// The sender spends the money before activation fires.
		_, err = engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: drain.AccountNumber,
			Amount:                4000,
		})
		require.NoError(t, err)

		require.NoError(t, engine.ActivateScheduled(ctx, debit.Id))

		failed, err := store.GetTransaction(ctx, debit.Id)
		require.NoError(t, err)
		assert.Equal(t, models.FAILED, failed.Status)
		assert.Equal(t, "insufficient funds at settlement", failed.StatusNote)
		assert.Equal(t, int64(1000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(0), balanceOf(t, store, receiver.Id))
	})

	t.Run("Activation Fails When Recipient Was Closed", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "4000008", 5000)
		receiver := createAccount(t, store, "4000009", 0)

		scheduledAt := time.Now().Add(time.Minute)
		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                3000,
			ScheduledAt:           &scheduledAt,
		})
		require.NoError(t, err)
		require.NoError(t, store.CloseAccount(ctx, receiver.Id))

		require.NoError(t, engine.ActivateScheduled(ctx, debit.Id))

		failed, err := store.GetTransaction(ctx, debit.Id)
		require.NoError(t, err)
		assert.Equal(t, models.FAILED, failed.Status)
		assert.Equal(t, int64(5000), balanceOf(t, store, sender.Id))
	})
}

func TestCancelTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending Can Be Cancelled By Owner", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "5000001", 5000)
		receiver := createAccount(t, store, "5000002", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 1000)

		cancelled, err := engine.CancelTransaction(ctx, sender.Id, debit.Id)
		require.NoError(t, err)
		assert.Equal(t, models.CANCELLED, cancelled.Status)
		assert.Equal(t, "cancelled by account holder", cancelled.StatusNote)
		assert.Equal(t, int64(5000), balanceOf(t, store, sender.Id))
	})

	t.Run("Non-Owner Is Forbidden", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "5000003", 5000)
		receiver := createAccount(t, store, "5000004", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 1000)

		_, err := engine.CancelTransaction(ctx, receiver.Id, debit.Id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Completed Cannot Be Cancelled", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "5000005", 5000)
		receiver := createAccount(t, store, "5000006", 0)

		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                1000,
		})
		require.NoError(t, err)

		_, err = engine.CancelTransaction(ctx, sender.Id, debit.Id)
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)
	})

	t.Run("Scheduled Cannot Be Cancelled", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "5000007", 5000)
		receiver := createAccount(t, store, "5000008", 0)

		scheduledAt := time.Now().Add(time.Hour)
		debit, err := engine.SubmitTransfer(ctx, TransferInput{
			SenderAccountId:       sender.Id,
			ReceiverAccountNumber: receiver.AccountNumber,
			Amount:                1000,
			ScheduledAt:           &scheduledAt,
		})
		require.NoError(t, err)

		_, err = engine.CancelTransaction(ctx, sender.Id, debit.Id)
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)
	})
}

func TestAdminForceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Force Completed Settles And Credits Exactly Once", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "6000001", 5000)
		receiver := createAccount(t, store, "6000002", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 2000)

		forced, err := engine.AdminForceStatus(ctx, debit.Id, models.COMPLETED, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, models.COMPLETED, forced.Status)
		assert.Equal(t, int64(3000), balanceOf(t, store, sender.Id))
		assert.Equal(t, int64(2000), balanceOf(t, store, receiver.Id))

		_, err = store.GetTransaction(ctx, models.CreditLegID(debit.TransferId))
		assert.NoError(t, err)

		// Forcing again hits the terminal state, with no second credit.
		_, err = engine.AdminForceStatus(ctx, debit.Id, models.COMPLETED, "admin-1")
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)
		assert.Equal(t, int64(2000), balanceOf(t, store, receiver.Id))
	})

	t.Run("Force Failed Records The Actor", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "6000003", 5000)
		receiver := createAccount(t, store, "6000004", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 2000)

		forced, err := engine.AdminForceStatus(ctx, debit.Id, models.FAILED, "admin-2")
		require.NoError(t, err)
		assert.Equal(t, models.FAILED, forced.Status)
		assert.Contains(t, forced.StatusNote, "admin-2")
		assert.Equal(t, int64(5000), balanceOf(t, store, sender.Id))
	})

	t.Run("Illegal Target Status", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "6000005", 5000)
		receiver := createAccount(t, store, "6000006", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 2000)

		_, err := engine.AdminForceStatus(ctx, debit.Id, models.SCHEDULED, "admin-3")
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)
	})

	t.Run("Force Completed With Insufficient Funds Surfaces", func(t *testing.T) {
		engine, store, _ := newTestEngine(DefaultConfig())
		sender := createAccount(t, store, "6000007", 100)
		receiver := createAccount(t, store, "6000008", 0)
		debit := appendPendingTransfer(t, store, sender, receiver, 2000)

		_, err := engine.AdminForceStatus(ctx, debit.Id, models.COMPLETED, "admin-4")
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		got, getErr := store.GetTransaction(ctx, debit.Id)
		require.NoError(t, getErr)
		assert.Equal(t, models.PENDING, got.Status)
	})
}

func TestReadPassthroughs(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(DefaultConfig())
	sender := createAccount(t, store, "7000001", 12345)
	receiver := createAccount(t, store, "7000002", 0)

	_, err := engine.SubmitTransfer(ctx, TransferInput{
		SenderAccountId:       sender.Id,
		ReceiverAccountNumber: receiver.AccountNumber,
		Amount:                345,
	})
	require.NoError(t, err)

	t.Run("GetBalance", func(t *testing.T) {
		account, err := engine.GetBalance(ctx, sender.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(12000), account.Balance)
	})

	t.Run("ListTransactions", func(t *testing.T) {
		txs, err := engine.ListTransactions(ctx, sender.Id, storage.TransactionFilter{})
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("Unknown Account", func(t *testing.T) {
		_, err := engine.ListTransactions(ctx, "missing", storage.TransactionFilter{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

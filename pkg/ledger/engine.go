package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sam/retail-ledger/pkg/limits"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/notify"
	"github.com/sam/retail-ledger/pkg/scheduler"
	"github.com/sam/retail-ledger/pkg/storage"
)

// Config tunes the engine's policies. Amounts are in minor units (cents).
type Config struct {
	// DailyLimit caps a sender's outgoing transfer volume inside the
	// rolling window. Zero or below disables the check.
	DailyLimit int64
	// LimitWindow is the width of the rolling limit window.
	LimitWindow time.Duration
	// TransferFee is a flat fee deducted from the credited amount.
	TransferFee int64
	// MaxCommitRetries bounds retries after an optimistic-lock conflict.
	MaxCommitRetries int
}

// DefaultConfig returns the standard policy set: $5000 daily limit over a
// 24h window, no fee, three commit attempts.
func DefaultConfig() Config {
	return Config{
		DailyLimit:       500000,
		LimitWindow:      24 * time.Hour,
		TransferFee:      0,
		MaxCommitRetries: 3,
	}
}

// Engine implements Service on top of a Storage backend.
type Engine struct {
	store     storage.Storage
	scheduler scheduler.Scheduler
	notifier  notify.Publisher
	logger    *slog.Logger
	cfg       Config
}

// NewEngine creates a transfer engine. A nil notifier disables event
// publishing.
func NewEngine(store storage.Storage, sched scheduler.Scheduler, notifier notify.Publisher, logger *slog.Logger, cfg Config) *Engine {
	if notifier == nil {
		notifier = &notify.NoOpPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxCommitRetries < 1 {
		cfg.MaxCommitRetries = 1
	}
	return &Engine{
		store:     store,
		scheduler: sched,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Make sure we conform to the interface
var _ Service = (*Engine)(nil)

// SubmitTransfer runs the precondition pipeline and either commits the
// transfer synchronously or persists a scheduled debit leg.
func (e *Engine) SubmitTransfer(ctx context.Context, input TransferInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// 1. Resolve both parties.
	sender, err := e.store.GetAccount(ctx, input.SenderAccountId)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}
	receiver, err := e.store.GetAccountByNumber(ctx, input.ReceiverAccountNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("account number %s: %w", input.ReceiverAccountNumber, ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("failed to load receiver: %w", err)
	}

	// 2. Structural checks.
	if sender.Id == receiver.Id {
		return nil, ErrSelfTransfer
	}
	if sender.Status != models.AccountActive {
		return nil, fmt.Errorf("sender %s: %w", sender.Id, ErrAccountClosed)
	}
	if receiver.Status != models.AccountActive {
		return nil, fmt.Errorf("receiver %s: %w", receiver.Id, ErrAccountClosed)
	}

	transferID := models.NewTransferID()

	// 3. Future-dated transfers are persisted without balance effect and
	// activated later; funds and limit are re-checked at activation.
	if input.ScheduledAt != nil && input.ScheduledAt.After(time.Now()) {
		debit := e.buildDebitLeg(transferID, sender, receiver, input, models.SCHEDULED)
		debit.ScheduledAt = input.ScheduledAt
		if err := e.store.AppendTransaction(ctx, debit); err != nil {
			return nil, fmt.Errorf("failed to record scheduled transfer: %w", err)
		}
		if err := e.scheduler.ScheduleActivation(ctx, debit.Id, time.Until(*input.ScheduledAt)); err != nil {
			// The record is durable; the reconciliation sweep will pick it
			// up even if the delayed message was never enqueued.
			e.logger.Error("failed to enqueue activation", "transaction_id", debit.Id, "error", err)
		}
		return debit, nil
	}

	// 4. Funds and limit checks. The balance check here is advisory; the
	// storage commit re-checks it atomically.
	if sender.Balance < input.Amount {
		return nil, fmt.Errorf("account %s: %w", sender.Id, storage.ErrInsufficientFunds)
	}
	if err := e.checkDailyLimit(ctx, sender.Id, input.Amount); err != nil {
		return nil, err
	}

	// 5. Commit both legs and both balance changes atomically.
	debit := e.buildDebitLeg(transferID, sender, receiver, input, models.COMPLETED)
	credit := e.buildCreditLeg(transferID, sender, receiver, input)
	if err := e.commitWithRetry(ctx, debit, credit); err != nil {
		return nil, err
	}

	e.publish(ctx, notify.EventTransferCompleted, debit)
	return debit, nil
}

// ActivateScheduled drives a scheduled transfer through pending to its
// settled or failed terminal state. Redelivered activation signals for an
// already-settled transfer are no-ops.
func (e *Engine) ActivateScheduled(ctx context.Context, txID string) error {
	tx, err := e.store.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txID, err)
	}

	switch tx.Status {
	case models.SCHEDULED:
		err := e.store.UpdateTransactionStatus(ctx, txID, models.SCHEDULED, models.PENDING, "")
		if errors.Is(err, storage.ErrInvalidTransition) {
			// A concurrent activation won the transition.
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to activate transaction %s: %w", txID, err)
		}
	case models.PENDING:
		// A previous activation attempt moved it to pending but did not
		// finish settling; resume.
	default:
		return nil
	}

	return e.settlePending(ctx, tx)
}

// settlePending re-runs the precondition pipeline for a pending debit leg
// and either settles it or fails it with a note. The debit leg's own amount
// is already reserved against the limit while pending, so no extra headroom
// is demanded here.
func (e *Engine) settlePending(ctx context.Context, debit *models.Transaction) error {
	fail := func(note string) error {
		if err := e.store.UpdateTransactionStatus(ctx, debit.Id, models.PENDING, models.FAILED, note); err != nil {
			return fmt.Errorf("failed to mark transaction %s failed: %w", debit.Id, err)
		}
		e.logger.Info("scheduled transfer failed", "transaction_id", debit.Id, "reason", note)
		e.publish(ctx, notify.EventTransferFailed, debit)
		return nil
	}

	sender, err := e.store.GetAccount(ctx, debit.AccountId)
	if err != nil {
		return fmt.Errorf("failed to load sender: %w", err)
	}
	receiver, err := e.store.GetAccount(ctx, debit.Receiver.AccountId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail("recipient account no longer exists")
		}
		return fmt.Errorf("failed to load receiver: %w", err)
	}

	if sender.Status != models.AccountActive {
		return fail("sender account is not active")
	}
	if receiver.Status != models.AccountActive {
		return fail("recipient account is not active")
	}
	if sender.Balance < debit.Amount {
		return fail("insufficient funds at settlement")
	}
	if err := e.checkDailyLimit(ctx, sender.Id, 0); err != nil {
		if errors.Is(err, ErrDailyLimitExceeded) {
			return fail("daily transfer limit exceeded at settlement")
		}
		return err
	}

	credit := e.mirrorCredit(debit)
	err = e.settleWithRetry(ctx, debit, credit)
	switch {
	case err == nil:
		e.publish(ctx, notify.EventTransferCompleted, debit)
		return nil
	case errors.Is(err, storage.ErrInvalidTransition):
		// Another worker already settled, failed or cancelled this leg.
		return nil
	case errors.Is(err, storage.ErrInsufficientFunds):
		return fail("insufficient funds at settlement")
	default:
		return fmt.Errorf("failed to settle transaction %s: %w", debit.Id, err)
	}
}

// CancelTransaction cancels a pending transfer owned by the caller. There is
// no balance effect to undo: pending transfers have not moved funds.
func (e *Engine) CancelTransaction(ctx context.Context, callerAccountID, txID string) (*models.Transaction, error) {
	tx, err := e.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", txID, err)
	}
	if tx.AccountId != callerAccountID {
		return nil, fmt.Errorf("transaction %s: %w", txID, ErrForbidden)
	}
	if tx.Status != models.PENDING {
		return nil, fmt.Errorf("transaction %s is %s: %w", txID, tx.Status, storage.ErrInvalidTransition)
	}

	if err := e.store.UpdateTransactionStatus(ctx, txID, models.PENDING, models.CANCELLED, "cancelled by account holder"); err != nil {
		return nil, err
	}
	e.publish(ctx, notify.EventTransferCancelled, tx)
	return e.store.GetTransaction(ctx, txID)
}

// AdminForceStatus forces a pending transfer into a terminal status. Forcing
// completed applies the settlement unit, which creates the mirrored credit
// leg exactly once; the daily limit is not re-checked on this path.
func (e *Engine) AdminForceStatus(ctx context.Context, txID string, newStatus models.TransactionStatus, actorID string) (*models.Transaction, error) {
	tx, err := e.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", txID, err)
	}
	if tx.Status != models.PENDING || !models.CanTransition(tx.Status, newStatus) {
		return nil, fmt.Errorf("cannot force %s from %s: %w", newStatus, tx.Status, storage.ErrInvalidTransition)
	}

	if newStatus == models.COMPLETED {
		credit := e.mirrorCredit(tx)
		if err := e.settleWithRetry(ctx, tx, credit); err != nil {
			return nil, err
		}
		e.publish(ctx, notify.EventTransferCompleted, tx)
	} else {
		note := fmt.Sprintf("forced to %s by admin %s", newStatus, actorID)
		if err := e.store.UpdateTransactionStatus(ctx, txID, models.PENDING, newStatus, note); err != nil {
			return nil, err
		}
		eventType := notify.EventTransferFailed
		if newStatus == models.CANCELLED {
			eventType = notify.EventTransferCancelled
		}
		e.publish(ctx, eventType, tx)
	}

	e.logger.Info("admin override applied", "transaction_id", txID, "new_status", newStatus, "actor_id", actorID)
	return e.store.GetTransaction(ctx, txID)
}

// GetBalance returns the account with its current balance.
func (e *Engine) GetBalance(ctx context.Context, accountID string) (*models.Account, error) {
	return e.store.GetAccount(ctx, accountID)
}

// ListTransactions returns the transactions owned by an account.
func (e *Engine) ListTransactions(ctx context.Context, accountID string, filter storage.TransactionFilter) ([]models.Transaction, error) {
	if _, err := e.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return e.store.ListTransactionsByAccountID(ctx, accountID, filter)
}

// checkDailyLimit enforces the rolling ceiling over the sender's outgoing
// transfers. Pending debits count as reserved spend.
func (e *Engine) checkDailyLimit(ctx context.Context, senderID string, proposed int64) error {
	if e.cfg.DailyLimit <= 0 {
		return nil
	}
	windowStart := time.Now().Add(-e.cfg.LimitWindow)
	txs, err := e.store.ListTransactionsByAccountID(ctx, senderID, storage.TransactionFilter{
		Type:  models.TypeDebit,
		Since: windowStart,
	})
	if err != nil {
		return fmt.Errorf("failed to load transfer history: %w", err)
	}
	if limits.Exceeds(txs, windowStart, proposed, e.cfg.DailyLimit) {
		return fmt.Errorf("account %s: %w", senderID, ErrDailyLimitExceeded)
	}
	return nil
}

// commitWithRetry retries the atomic commit after optimistic-lock conflicts.
func (e *Engine) commitWithRetry(ctx context.Context, debit, credit *models.Transaction) error {
	var err error
	for attempt := 1; attempt <= e.cfg.MaxCommitRetries; attempt++ {
		err = e.store.CommitTransfer(ctx, debit, credit)
		if !errors.Is(err, storage.ErrConcurrencyConflict) {
			return err
		}
		e.logger.Warn("commit conflict, retrying", "transfer_id", debit.TransferId, "attempt", attempt)
	}
	return err
}

func (e *Engine) settleWithRetry(ctx context.Context, debit, credit *models.Transaction) error {
	var err error
	for attempt := 1; attempt <= e.cfg.MaxCommitRetries; attempt++ {
		err = e.store.SettleTransaction(ctx, debit, credit)
		if !errors.Is(err, storage.ErrConcurrencyConflict) {
			return err
		}
		e.logger.Warn("settle conflict, retrying", "transfer_id", debit.TransferId, "attempt", attempt)
	}
	return err
}

// buildDebitLeg assembles the sender-side transaction record.
func (e *Engine) buildDebitLeg(transferID string, sender, receiver *models.Account, input TransferInput, status models.TransactionStatus) *models.Transaction {
	now := time.Now()
	tx := &models.Transaction{
		Id:          models.DebitLegID(transferID),
		TransferId:  transferID,
		AccountId:   sender.Id,
		Type:        models.TypeDebit,
		Category:    models.CategoryTransfer,
		Amount:      input.Amount,
		Currency:    sender.Currency,
		Description: input.Description,
		Status:      status,
		Sender:      party(sender),
		Receiver:    party(receiver),
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == models.COMPLETED {
		tx.CompletedAt = &now
	}
	return tx
}

// buildCreditLeg assembles the receiver-side record. The flat fee is carried
// on this leg: the receiver is credited Amount - Fee.
func (e *Engine) buildCreditLeg(transferID string, sender, receiver *models.Account, input TransferInput) *models.Transaction {
	now := time.Now()
	return &models.Transaction{
		Id:          models.CreditLegID(transferID),
		TransferId:  transferID,
		AccountId:   receiver.Id,
		Type:        models.TypeCredit,
		Category:    models.CategoryTransfer,
		Amount:      input.Amount,
		Fee:         e.cfg.TransferFee,
		Currency:    receiver.Currency,
		Description: input.Description,
		Status:      models.COMPLETED,
		Sender:      party(sender),
		Receiver:    party(receiver),
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}
}

// mirrorCredit derives the receiver-side leg from a stored debit leg. The
// leg id is a pure function of the transfer id, so a retried settlement can
// never credit the receiver twice.
func (e *Engine) mirrorCredit(debit *models.Transaction) *models.Transaction {
	now := time.Now()
	return &models.Transaction{
		Id:          models.CreditLegID(debit.TransferId),
		TransferId:  debit.TransferId,
		AccountId:   debit.Receiver.AccountId,
		Type:        models.TypeCredit,
		Category:    models.CategoryTransfer,
		Amount:      debit.Amount,
		Fee:         e.cfg.TransferFee,
		Currency:    debit.Currency,
		Description: debit.Description,
		Status:      models.COMPLETED,
		Sender:      debit.Sender,
		Receiver:    debit.Receiver,
		Metadata:    debit.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}
}

func party(account *models.Account) models.Party {
	return models.Party{
		AccountId:     account.Id,
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
	}
}

func (e *Engine) publish(ctx context.Context, eventType notify.EventType, tx *models.Transaction) {
	event := notify.Event{
		Type:          eventType,
		TransferId:    tx.TransferId,
		TransactionId: tx.Id,
		AccountId:     tx.AccountId,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
	}
	if err := e.notifier.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish event", "type", eventType, "transaction_id", tx.Id, "error", err)
	}
}

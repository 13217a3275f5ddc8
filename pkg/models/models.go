package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus defines the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
	AccountClosed    AccountStatus = "CLOSED"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	SCHEDULED TransactionStatus = "SCHEDULED"
	PENDING   TransactionStatus = "PENDING"
	COMPLETED TransactionStatus = "COMPLETED"
	FAILED    TransactionStatus = "FAILED"
	CANCELLED TransactionStatus = "CANCELLED"
)

// Terminal reports whether a status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == COMPLETED || s == FAILED || s == CANCELLED
}

// CanTransition reports whether moving a transaction from one status to
// another is legal. Statuses only move forward: SCHEDULED activates to
// PENDING, and PENDING resolves to exactly one terminal status.
func CanTransition(from, to TransactionStatus) bool {
	switch from {
	case SCHEDULED:
		return to == PENDING
	case PENDING:
		return to == COMPLETED || to == FAILED || to == CANCELLED
	default:
		return false
	}
}

// TransactionType distinguishes the direction of a ledger movement.
type TransactionType string

const (
	TypeCredit   TransactionType = "CREDIT"
	TypeDebit    TransactionType = "DEBIT"
	TypeTransfer TransactionType = "TRANSFER"
)

// TransactionCategory classifies a transaction for statements and filtering.
type TransactionCategory string

const (
	CategoryTransfer   TransactionCategory = "TRANSFER"
	CategoryDeposit    TransactionCategory = "DEPOSIT"
	CategoryWithdrawal TransactionCategory = "WITHDRAWAL"
	CategoryPayment    TransactionCategory = "PAYMENT"
	CategoryRefund     TransactionCategory = "REFUND"
	CategoryFee        TransactionCategory = "FEE"
	CategoryInterest   TransactionCategory = "INTEREST"
)

// Account represents the internal domain model for a customer account.
// Balance is held in minor currency units (cents) and is only ever mutated
// through the atomic commit operations of the storage layer.
type Account struct {
	Id            string        `json:"id" dynamodbav:"id"`
	Name          string        `json:"name" dynamodbav:"name"`
	AccountNumber string        `json:"account_number" dynamodbav:"account_number"`
	Balance       int64         `json:"balance" dynamodbav:"balance"`
	Currency      string        `json:"currency" dynamodbav:"currency"`
	Status        AccountStatus `json:"status" dynamodbav:"status"`
	Version       int64         `json:"version" dynamodbav:"version"`
	CreatedAt     time.Time     `json:"created_at" dynamodbav:"created_at"`
}

// Party is an immutable snapshot of one side of a transfer, taken at the
// moment the transaction record is written.
type Party struct {
	AccountId     string `dynamodbav:"account_id"`
	AccountNumber string `dynamodbav:"account_number"`
	Name          string `dynamodbav:"name"`
}

// Metadata carries request-origin details attached to a transaction.
type Metadata struct {
	OriginIP  string `dynamodbav:"origin_ip,omitempty"`
	UserAgent string `dynamodbav:"user_agent,omitempty"`
}

// Transaction represents one leg of a money movement. A transfer between
// two accounts is recorded as two Transaction legs sharing a TransferId:
// a DEBIT leg owned by the sender and a CREDIT leg owned by the receiver.
type Transaction struct {
	Id          string              `dynamodbav:"id"`
	TransferId  string              `dynamodbav:"transfer_id"`
	AccountId   string              `dynamodbav:"account_id"`
	Type        TransactionType     `dynamodbav:"type"`
	Category    TransactionCategory `dynamodbav:"category"`
	Amount      int64               `dynamodbav:"amount"`
	Fee         int64               `dynamodbav:"fee"`
	Currency    string              `dynamodbav:"currency"`
	Description string              `dynamodbav:"description"`
	Status      TransactionStatus   `dynamodbav:"status"`
	StatusNote  string              `dynamodbav:"status_note,omitempty"`
	Sender      Party               `dynamodbav:"sender"`
	Receiver    Party               `dynamodbav:"receiver"`
	Metadata    Metadata            `dynamodbav:"metadata"`
	ScheduledAt *time.Time          `dynamodbav:"scheduled_at,omitempty"`
	CompletedAt *time.Time          `dynamodbav:"completed_at,omitempty"`
	CreatedAt   time.Time           `dynamodbav:"created_at"`
	UpdatedAt   time.Time           `dynamodbav:"updated_at"`
}

// NetAmount is the value actually credited to a receiver. It is always
// derived from Amount and Fee so the two can never drift apart.
func (t *Transaction) NetAmount() int64 {
	return t.Amount - t.Fee
}

// legNamespace scopes the deterministic leg identifiers below.
var legNamespace = uuid.MustParse("9a1c8f4e-52d7-4ab1-9d6c-7f30b1e5a8c2")

// NewTransferID returns a fresh correlation identifier for a transfer pair.
func NewTransferID() string {
	return uuid.New().String()
}

// DebitLegID derives the sender-side transaction id from a transfer id.
// Deriving leg ids from the transfer id makes retries and the admin
// settlement path naturally idempotent: a second attempt produces the same
// id and trips the log's duplicate-id defense instead of a second record.
func DebitLegID(transferID string) string {
	return uuid.NewSHA1(legNamespace, []byte(transferID+"/debit")).String()
}

// CreditLegID derives the receiver-side transaction id from a transfer id.
func CreditLegID(transferID string) string {
	return uuid.NewSHA1(legNamespace, []byte(transferID+"/credit")).String()
}

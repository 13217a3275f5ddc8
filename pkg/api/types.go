// Package api defines the external request and response types. Monetary
// amounts cross this boundary as fixed-point decimals; the core works in
// integer minor units.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewAccount is the request body for opening an account.
type NewAccount struct {
	Name           string          `json:"name"`
	AccountNumber  string          `json:"account_number,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Currency       string          `json:"currency,omitempty"`
}

// Account is the external representation of an account.
type Account struct {
	Id            string          `json:"id"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Balance is the response body for a balance query.
type Balance struct {
	AccountId string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
}

// NewTransfer is the request body for submitting a transfer.
type NewTransfer struct {
	ToAccountNumber string          `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	ScheduledAt     *time.Time      `json:"scheduled_at,omitempty"`
}

// Party identifies one side of a transfer.
type Party struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
}

// Transaction is the external representation of a transaction record.
type Transaction struct {
	Id          string          `json:"id"`
	TransferId  string          `json:"transfer_id,omitempty"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	StatusNote  string          `json:"status_note,omitempty"`
	Sender      Party           `json:"sender"`
	Receiver    Party           `json:"receiver"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ForceStatus is the admin request body for overriding a transaction status.
type ForceStatus struct {
	Status string `json:"status"`
}

// Error is the uniform error response body.
type Error struct {
	Error string `json:"error"`
}

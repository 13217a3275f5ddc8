// Package mapping converts between the external decimal representation and
// the internal integer minor-unit representation, and between domain models
// and API types.
package mapping

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sam/retail-ledger/pkg/api"
	"github.com/sam/retail-ledger/pkg/models"
)

// ErrSubCentPrecision is returned when an amount carries more precision
// than the ledger stores.
var ErrSubCentPrecision = errors.New("amount has sub-cent precision")

// ErrNegativeAmount is returned for amounts below zero.
var ErrNegativeAmount = errors.New("amount cannot be negative")

// ToCents converts a decimal amount to integer cents. Sub-cent precision is
// rejected rather than rounded: the caller said something the ledger cannot
// represent, and silently rounding money is worse than failing.
func ToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	shifted := amount.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrSubCentPrecision
	}
	return shifted.IntPart(), nil
}

// ToDecimal converts integer cents to the external decimal representation.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToApiAccount converts a domain account to its external representation.
func ToApiAccount(account *models.Account) api.Account {
	return api.Account{
		Id:            account.Id,
		Name:          account.Name,
		AccountNumber: account.AccountNumber,
		Balance:       ToDecimal(account.Balance),
		Currency:      account.Currency,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt,
	}
}

// ToApiTransaction converts a domain transaction to its external
// representation.
func ToApiTransaction(tx *models.Transaction) api.Transaction {
	return api.Transaction{
		Id:          tx.Id,
		TransferId:  tx.TransferId,
		Type:        string(tx.Type),
		Category:    string(tx.Category),
		Amount:      ToDecimal(tx.Amount),
		Fee:         ToDecimal(tx.Fee),
		NetAmount:   ToDecimal(tx.NetAmount()),
		Currency:    tx.Currency,
		Description: tx.Description,
		Status:      string(tx.Status),
		StatusNote:  tx.StatusNote,
		Sender:      api.Party{AccountNumber: tx.Sender.AccountNumber, Name: tx.Sender.Name},
		Receiver:    api.Party{AccountNumber: tx.Receiver.AccountNumber, Name: tx.Receiver.Name},
		ScheduledAt: tx.ScheduledAt,
		CompletedAt: tx.CompletedAt,
		CreatedAt:   tx.CreatedAt,
	}
}

// ToApiTransactions converts a slice of domain transactions.
func ToApiTransactions(txs []models.Transaction) []api.Transaction {
	result := make([]api.Transaction, 0, len(txs))
	for i := range txs {
		result = append(result, ToApiTransaction(&txs[i]))
	}
	return result
}

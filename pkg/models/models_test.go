package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{"scheduled activates to pending", SCHEDULED, PENDING, true},
		{"pending completes", PENDING, COMPLETED, true},
		{"pending fails", PENDING, FAILED, true},
		{"pending cancels", PENDING, CANCELLED, true},
		{"scheduled cannot complete directly", SCHEDULED, COMPLETED, false},
		{"scheduled cannot cancel", SCHEDULED, CANCELLED, false},
		{"completed is terminal", COMPLETED, CANCELLED, false},
		{"cancelled is terminal", CANCELLED, PENDING, false},
		{"failed is terminal", FAILED, COMPLETED, false},
		{"no backwards transition", COMPLETED, PENDING, false},
		{"no self transition", PENDING, PENDING, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTransactionTypeValues(t *testing.T) {
	assert.Equal(t, TransactionType("DEBIT"), TypeDebit)
	assert.Equal(t, TransactionType("CREDIT"), TypeCredit)
	assert.Equal(t, TransactionType("TRANSFER"), TypeTransfer)
}

func TestTerminal(t *testing.T) {
	assert.True(t, COMPLETED.Terminal())
	assert.True(t, FAILED.Terminal())
	assert.True(t, CANCELLED.Terminal())
	assert.False(t, PENDING.Terminal())
	assert.False(t, SCHEDULED.Terminal())
}

func TestNetAmount(t *testing.T) {
	tx := &Transaction{Amount: 3000, Fee: 25}
	assert.Equal(t, int64(2975), tx.NetAmount())

	tx.Fee = 0
	assert.Equal(t, int64(3000), tx.NetAmount())
}

func TestLegIDsAreDeterministic(t *testing.T) {
	transferID := NewTransferID()

	assert.Equal(t, DebitLegID(transferID), DebitLegID(transferID))
	assert.Equal(t, CreditLegID(transferID), CreditLegID(transferID))
	assert.NotEqual(t, DebitLegID(transferID), CreditLegID(transferID))

	// Distinct transfers must never collide.
	other := NewTransferID()
	assert.NotEqual(t, DebitLegID(transferID), DebitLegID(other))
}

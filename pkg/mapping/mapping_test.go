package mapping

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam/retail-ledger/pkg/models"
)

func TestToCents(t *testing.T) {
	t.Run("Whole Dollars", func(t *testing.T) {
		cents, err := ToCents(decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, int64(10000), cents)
	})

	t.Run("Dollars And Cents", func(t *testing.T) {
		cents, err := ToCents(decimal.RequireFromString("30.25"))
		require.NoError(t, err)
		assert.Equal(t, int64(3025), cents)
	})

	t.Run("Sub-Cent Precision Rejected", func(t *testing.T) {
		_, err := ToCents(decimal.RequireFromString("10.001"))
		assert.ErrorIs(t, err, ErrSubCentPrecision)
	})

	t.Run("Negative Rejected", func(t *testing.T) {
		_, err := ToCents(decimal.RequireFromString("-5.00"))
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("Zero Allowed", func(t *testing.T) {
		cents, err := ToCents(decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, int64(0), cents)
	})
}

func TestToDecimal(t *testing.T) {
	assert.Equal(t, "70.00", ToDecimal(7000).StringFixed(2))
	assert.Equal(t, "0.01", ToDecimal(1).StringFixed(2))
}

func TestToApiTransaction(t *testing.T) {
	now := time.Now()
	tx := &models.Transaction{
		Id:         "tx-1",
		TransferId: "transfer-1",
		AccountId:  "account-1",
		Type:       models.TypeDebit,
		Category:   models.CategoryTransfer,
		Amount:     3000,
		Fee:        50,
		Currency:   "USD",
		Status:     models.COMPLETED,
		Sender:     models.Party{AccountId: "account-1", AccountNumber: "1000001", Name: "Alice"},
		Receiver:   models.Party{AccountId: "account-2", AccountNumber: "1000002", Name: "Bob"},
		CreatedAt:  now,
	}

	got := ToApiTransaction(tx)
	assert.Equal(t, "30.00", got.Amount.StringFixed(2))
	assert.Equal(t, "0.50", got.Fee.StringFixed(2))
	assert.Equal(t, "29.50", got.NetAmount.StringFixed(2))
	assert.Equal(t, "DEBIT", got.Type)
	assert.Equal(t, "1000002", got.Receiver.AccountNumber)
}

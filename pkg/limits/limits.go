// Package limits implements the rolling daily transfer ceiling.
package limits

import (
	"time"

	"github.com/sam/retail-ledger/pkg/models"
)

// SpentSince sums the amounts of completed debit legs created at or after
// windowStart. Failed and cancelled transfers do not count against the
// ceiling, and neither do incoming credits.
func SpentSince(transactions []models.Transaction, windowStart time.Time) int64 {
	var spent int64
	for _, tx := range transactions {
		if tx.Type != models.TypeDebit {
			continue
		}
		if tx.Status != models.COMPLETED && tx.Status != models.PENDING {
			continue
		}
		if tx.CreatedAt.Before(windowStart) {
			continue
		}
		spent += tx.Amount
	}
	return spent
}

// Exceeds reports whether adding a proposed debit to the spend already
// accumulated inside the window would push the account past its ceiling.
// A ceiling of zero or below means the account is unlimited.
func Exceeds(transactions []models.Transaction, windowStart time.Time, proposed, ceiling int64) bool {
	if ceiling <= 0 {
		return false
	}
	return SpentSince(transactions, windowStart)+proposed > ceiling
}

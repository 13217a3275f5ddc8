// Package scheduler delivers delayed activation signals for future-dated
// transfers.
package scheduler

import (
	"context"
	"time"
)

// ActivationMessage is the payload carried by a delayed activation signal.
type ActivationMessage struct {
	TransactionId string `json:"transaction_id"`
}

// Scheduler enqueues an activation signal to fire after the given delay.
type Scheduler interface {
	ScheduleActivation(ctx context.Context, txID string, delay time.Duration) error
}

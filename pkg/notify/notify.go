// Package notify publishes transfer lifecycle events to an external
// endpoint, so downstream systems (statements, fraud review) learn about
// state changes without polling the ledger.
package notify

import "context"

// EventType defines the type of a published event.
type EventType string

const (
	// EventTransferCompleted is published when both legs of a transfer commit.
	EventTransferCompleted EventType = "transferCompleted"
	// EventTransferFailed is published when a transfer reaches failed.
	EventTransferFailed EventType = "transferFailed"
	// EventTransferCancelled is published when a pending transfer is cancelled.
	EventTransferCancelled EventType = "transferCancelled"
)

// Event is the payload delivered for a transfer state change.
type Event struct {
	Type          EventType `json:"type"`
	TransferId    string    `json:"transfer_id"`
	TransactionId string    `json:"transaction_id"`
	AccountId     string    `json:"account_id"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
}

// Publisher delivers transfer events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoOpPublisher discards all events. Used when no webhook URL is configured.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPublisher POSTs events as JSON to a configured endpoint.
type WebhookPublisher struct {
	URL    string
	Client *http.Client
}

// NewWebhookPublisher creates a publisher targeting the given URL.
func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{
		URL: url,
		// Don't let a slow receiver block transfer processing.
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Make sure we conform to the interface
var _ Publisher = (*WebhookPublisher)(nil)

// Publish delivers the event to the webhook endpoint.
func (p *WebhookPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "RetailLedger-Webhook/1.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublisher(t *testing.T) {
	event := Event{
		Type:          EventTransferCompleted,
		TransferId:    "transfer-1",
		TransactionId: "tx-1",
		AccountId:     "account-1",
		Amount:        2500,
		Status:        "completed",
	}

	t.Run("Delivers JSON Payload", func(t *testing.T) {
		var received Event
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		publisher := NewWebhookPublisher(server.URL)
		require.NoError(t, publisher.Publish(context.Background(), event))
		assert.Equal(t, event, received)
	})

	t.Run("Non-2xx Response Is An Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		publisher := NewWebhookPublisher(server.URL)
		err := publisher.Publish(context.Background(), event)
		assert.ErrorContains(t, err, "502")
	})
}

// Package handlers exposes the ledger over HTTP. Handlers are thin glue:
// decode, delegate to the engine or storage, map errors onto statuses.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sam/retail-ledger/pkg/api"
	"github.com/sam/retail-ledger/pkg/ledger"
	"github.com/sam/retail-ledger/pkg/storage"
)

// Caller identity arrives pre-authenticated from the gateway in headers.
const (
	accountIDHeader = "X-Account-Id"
	adminIDHeader   = "X-Admin-Id"
)

// ApiHandler holds the application's dependencies for the HTTP surface.
type ApiHandler struct {
	Store  storage.ApiStore
	Ledger ledger.Service
	Logger *slog.Logger
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(store storage.ApiStore, ledgerService ledger.Service, logger *slog.Logger) *ApiHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApiHandler{Store: store, Ledger: ledgerService, Logger: logger}
}

// respondJSON writes a JSON response body with the given status.
func (h *ApiHandler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to write response", "error", err)
	}
}

// respondError maps a domain error onto an HTTP status and a uniform body.
func (h *ApiHandler) respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err)
		// Don't leak internals to the client.
		h.respondJSON(w, status, api.Error{Error: "internal error"})
		return
	}
	h.respondJSON(w, status, api.Error{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrDailyLimitExceeded),
		errors.Is(err, ledger.ErrAccountClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrConcurrencyConflict),
		errors.Is(err, storage.ErrDuplicateTransactionID),
		errors.Is(err, storage.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sam/retail-ledger/pkg/api"
	"github.com/sam/retail-ledger/pkg/mapping"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// CreateAccount handles the logic for opening a new account.
func (h *ApiHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	// Decode the request body.
	var newAccount api.NewAccount
	if err := json.NewDecoder(r.Body).Decode(&newAccount); err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if newAccount.Name == "" {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: "name is required"})
		return
	}

	openingBalance, err := mapping.ToCents(newAccount.OpeningBalance)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	accountNumber := newAccount.AccountNumber
	if accountNumber == "" {
		accountNumber = newAccountNumber()
	}
	currency := newAccount.Currency
	if currency == "" {
		currency = "USD"
	}

	created, err := h.Store.CreateAccount(r.Context(), &models.Account{
		Name:          newAccount.Name,
		AccountNumber: accountNumber,
		Balance:       openingBalance,
		Currency:      currency,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, mapping.ToApiAccount(created))
}

// ListAccounts handles the logic for listing all accounts.
func (h *ApiHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]api.Account, 0, len(accounts))
	for i := range accounts {
		out = append(out, mapping.ToApiAccount(&accounts[i]))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// CloseAccount handles the logic for closing an account. Only the holder
// may close it; the record survives as transaction history.
func (h *ApiHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(accountIDHeader)
	if callerID == "" {
		h.respondJSON(w, http.StatusUnauthorized, api.Error{Error: "missing " + accountIDHeader + " header"})
		return
	}
	id := chi.URLParam(r, "id")
	if callerID != id {
		h.respondJSON(w, http.StatusForbidden, api.Error{Error: "account belongs to another holder"})
		return
	}

	if err := h.Store.CloseAccount(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAccountById handles the logic for retrieving an account.
func (h *ApiHandler) GetAccountById(w http.ResponseWriter, r *http.Request) {
	account, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, mapping.ToApiAccount(account))
}

// GetAccountBalance handles the logic for a balance query.
func (h *ApiHandler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	account, err := h.Ledger.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, api.Balance{
		AccountId: account.Id,
		Balance:   mapping.ToDecimal(account.Balance),
		Currency:  account.Currency,
	})
}

// ListAccountTransactions handles the logic for an account statement query.
// Optional query parameters: status, type, since (RFC 3339).
func (h *ApiHandler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	filter := storage.TransactionFilter{
		Status: models.TransactionStatus(r.URL.Query().Get("status")),
		Type:   models.TransactionType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.respondJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("invalid since parameter: %v", err)})
			return
		}
		filter.Since = since
	}

	txs, err := h.Ledger.ListTransactions(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, mapping.ToApiTransactions(txs))
}

// newAccountNumber generates a 10-digit account number. Uniqueness is
// enforced by the store; a collision surfaces as a conflict and the client
// retries.
func newAccountNumber() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("%010d", binary.BigEndian.Uint64(buf[:])%10000000000)
}

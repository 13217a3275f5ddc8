package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sam/retail-ledger/pkg/api"
	"github.com/sam/retail-ledger/pkg/ledger"
	"github.com/sam/retail-ledger/pkg/mapping"
	"github.com/sam/retail-ledger/pkg/models"
)

// SubmitTransfer handles the logic for submitting a transfer. Immediate
// transfers respond 201 with the completed debit leg; future-dated transfers
// respond 202 with the scheduled leg.
func (h *ApiHandler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(accountIDHeader)
	if callerID == "" {
		h.respondJSON(w, http.StatusUnauthorized, api.Error{Error: "missing " + accountIDHeader + " header"})
		return
	}

	// Decode the request body.
	var newTransfer api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&newTransfer); err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if newTransfer.ToAccountNumber == "" {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: "to_account_number is required"})
		return
	}

	amount, err := mapping.ToCents(newTransfer.Amount)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	debit, err := h.Ledger.SubmitTransfer(r.Context(), ledger.TransferInput{
		SenderAccountId:       callerID,
		ReceiverAccountNumber: newTransfer.ToAccountNumber,
		Amount:                amount,
		Description:           newTransfer.Description,
		ScheduledAt:           newTransfer.ScheduledAt,
		Metadata: models.Metadata{
			OriginIP:  r.RemoteAddr,
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	status := http.StatusCreated
	if debit.Status == models.SCHEDULED {
		status = http.StatusAccepted
	}
	h.respondJSON(w, status, mapping.ToApiTransaction(debit))
}

// CancelTransaction handles the logic for cancelling a pending transfer.
func (h *ApiHandler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	callerID := r.Header.Get(accountIDHeader)
	if callerID == "" {
		h.respondJSON(w, http.StatusUnauthorized, api.Error{Error: "missing " + accountIDHeader + " header"})
		return
	}

	cancelled, err := h.Ledger.CancelTransaction(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, mapping.ToApiTransaction(cancelled))
}

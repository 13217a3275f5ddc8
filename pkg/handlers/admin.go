package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sam/retail-ledger/pkg/api"
	"github.com/sam/retail-ledger/pkg/mapping"
	"github.com/sam/retail-ledger/pkg/models"
)

// ForceTransactionStatus handles the admin override: a pending transaction
// is forced into a terminal status on behalf of the acting administrator.
func (h *ApiHandler) ForceTransactionStatus(w http.ResponseWriter, r *http.Request) {
	adminID := r.Header.Get(adminIDHeader)
	if adminID == "" {
		h.respondJSON(w, http.StatusUnauthorized, api.Error{Error: "missing " + adminIDHeader + " header"})
		return
	}

	// Decode the request body.
	var force api.ForceStatus
	if err := json.NewDecoder(r.Body).Decode(&force); err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	newStatus := models.TransactionStatus(strings.ToUpper(force.Status))
	switch newStatus {
	case models.COMPLETED, models.FAILED, models.CANCELLED:
	default:
		h.respondJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("status must be one of COMPLETED, FAILED, CANCELLED, got %q", force.Status)})
		return
	}

	updated, err := h.Ledger.AdminForceStatus(r.Context(), chi.URLParam(r, "id"), newStatus, adminID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, mapping.ToApiTransaction(updated))
}

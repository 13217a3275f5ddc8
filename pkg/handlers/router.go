package handlers

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sam/retail-ledger/pkg/middleware"
)

// NewRouter assembles the HTTP routes on a chi router.
func NewRouter(h *ApiHandler, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))

	router.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/{id}", h.GetAccountById)
		r.Post("/{id}/close", h.CloseAccount)
		r.Get("/{id}/balance", h.GetAccountBalance)
		r.Get("/{id}/transactions", h.ListAccountTransactions)
	})

	router.Post("/transfers", h.SubmitTransfer)
	router.Post("/transactions/{id}/cancel", h.CancelTransaction)

	router.Post("/admin/transactions/{id}/status", h.ForceTransactionStatus)

	return router
}

// Package api assembles the HTTP surface: routing, middleware, and the
// handlers that translate requests into bridge service calls.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/zenmoney-bridge/internal/api/handlers"
	"github.com/dvloznov/zenmoney-bridge/internal/api/middleware"
)

// NewRouter builds the full route tree with standard middleware applied.
func NewRouter(h *handlers.LedgerHandler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", h.Sync)
		r.Post("/sync/full", h.FullSync)

		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/find", h.FindAccount)

		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)

		r.Get("/tags", h.ListTags)
		r.Get("/tags/find", h.FindTag)

		r.Get("/merchants", h.ListMerchants)
		r.Get("/budgets", h.ListBudgets)
		r.Get("/reminders", h.ListReminders)

		r.Get("/instruments", h.ListInstruments)
		r.Get("/instruments/{id}", h.GetInstrument)

		r.Post("/suggest", h.SuggestTags)

		r.Post("/bulk/prepare", h.PrepareBulk)
		r.Post("/bulk/execute", h.ExecuteBulk)
	})

	return r
}

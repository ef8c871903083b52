package wire

import (
	"finscope/internal/adaptor"
	"finscope/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireTransaction(r chi.Router, transactionHandler *adaptor.TransactionHandler, gate gates) {
	// ==================== PROTECTED + VERIFIED ROUTES ====================
	r.Route("/api/transactions", func(r chi.Router) {
		r.Use(gate.authenticate)
		r.Use(middleware.RequireVerification)

		r.Get("/", transactionHandler.List)
		r.Post("/", transactionHandler.Create)
		r.Get("/summary", transactionHandler.Summary)
		r.Get("/expenses-by-category", transactionHandler.ExpensesByCategory)
		r.Get("/{id}", transactionHandler.Get)
		r.Put("/{id}", transactionHandler.Update)
		r.Delete("/{id}", transactionHandler.Delete)
	})
}

package wire

import (
	"finscope/internal/adaptor"
	"finscope/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireCategory(r chi.Router, categoryHandler *adaptor.CategoryHandler, gate gates) {
	// ==================== PROTECTED + VERIFIED ROUTES ====================
	r.Route("/api/categories", func(r chi.Router) {
		r.Use(gate.authenticate)
		r.Use(middleware.RequireVerification)

		r.Get("/", categoryHandler.List)
		r.Post("/", categoryHandler.Create)
		r.Get("/usage", categoryHandler.Usage)
		r.Put("/{id}", categoryHandler.Update)
		r.Delete("/{id}", categoryHandler.Delete)
	})
}

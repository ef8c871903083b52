package wire

import (
	"finscope/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, adminHandler *adaptor.AdminHandler, gate gates) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(gate.authenticate)

		r.Get("/api/profile", userHandler.GetProfile)
		r.Put("/api/profile", userHandler.UpdateProfile)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(gate.authenticate)
		r.Use(gate.admin)

		r.Get("/api/roles", adminHandler.ListRoles)

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", adminHandler.ListUsers)
			r.Post("/", adminHandler.CreateUser)
			r.Get("/{id}", adminHandler.GetUser)
			r.Put("/{id}", adminHandler.UpdateUser)
			r.Delete("/{id}", adminHandler.DeleteUser)
			r.Post("/{id}/reset-password", adminHandler.ResetPassword)
		})
	})
}

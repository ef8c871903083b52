package wire

import (
	"finscope/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, gate gates) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/verify", authHandler.Verify)
	r.Post("/api/resend-code", authHandler.ResendCode)
	r.Post("/api/change-password", authHandler.ChangePassword)

	// ==================== PROTECTED ROUTES ====================
	r.With(gate.authenticate).Post("/api/logout", authHandler.Logout)
}

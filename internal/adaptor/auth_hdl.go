package adaptor

import (
	"net"
	"net/http"

	"finscope/internal/dto/request"
	"finscope/internal/usecase"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Verification code sent", resp)
}

// Verify handles POST /api/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	meta := usecase.SessionMeta{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}

	resp, err := h.service.Verify(r.Context(), &req, meta)
	if err != nil {
		handleServiceError(h.log, w, err, "verify code")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// ResendCode handles POST /api/resend-code
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req request.ResendCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ResendCode(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "resend code")
		return
	}

	utils.ResponseSuccess(w, "If a login is pending, a new code has been sent", nil)
}

// ChangePassword handles POST /api/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req request.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed successfully", nil)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		handleServiceError(h.log, w, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

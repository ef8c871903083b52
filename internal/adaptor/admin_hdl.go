package adaptor

import (
	"net/http"

	"finscope/internal/dto/request"
	"finscope/internal/usecase"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

// AdminHandler serves user administration. Routes are mounted behind RequireAdmin.
type AdminHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.UserService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

// ListUsers handles GET /api/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}

	users, err := h.service.GetAllUsers(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// GetUser handles GET /api/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "get user")
		return
	}

	utils.ResponseSuccess(w, "User retrieved successfully", user)
}

// CreateUser handles POST /api/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create user")
		return
	}

	utils.ResponseCreated(w, "User created. Share the temporary password securely", created)
}

// UpdateUser handles PUT /api/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req request.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update user")
		return
	}

	utils.ResponseSuccess(w, "User updated successfully", user)
}

// ResetPassword handles POST /api/users/{id}/reset-password
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reset, err := h.service.ResetPassword(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Temporary password issued", reset)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actorID, id); err != nil {
		handleServiceError(h.log, w, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

// ListRoles handles GET /api/roles
func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.GetRoles(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list roles")
		return
	}

	utils.ResponseSuccess(w, "Roles retrieved successfully", roles)
}

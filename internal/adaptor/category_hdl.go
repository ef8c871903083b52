package adaptor

import (
	"net/http"

	"finscope/internal/dto/request"
	"finscope/internal/usecase"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	service usecase.CategoryService
	log     *zap.Logger
}

func NewCategoryHandler(service usecase.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		log:     log,
	}
}

// List handles GET /api/categories?type=
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	categories, err := h.service.List(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		handleServiceError(h.log, w, err, "list categories")
		return
	}

	utils.ResponseSuccess(w, "Categories retrieved successfully", categories)
}

// Create handles POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create category")
		return
	}

	utils.ResponseCreated(w, "Category created successfully", category)
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req request.CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update category")
		return
	}

	utils.ResponseSuccess(w, "Category updated successfully", category)
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(h.log, w, err, "delete category")
		return
	}

	utils.ResponseSuccess(w, "Category deleted successfully", nil)
}

// Usage handles GET /api/categories/usage?period=
func (h *CategoryHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	usage, err := h.service.Usage(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(h.log, w, err, "category usage")
		return
	}

	utils.ResponseSuccess(w, "Category usage retrieved successfully", usage)
}

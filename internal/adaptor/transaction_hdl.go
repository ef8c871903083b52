package adaptor

import (
	"net/http"

	"finscope/internal/dto/request"
	"finscope/internal/usecase"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

type TransactionHandler struct {
	service usecase.TransactionService
	log     *zap.Logger
}

func NewTransactionHandler(service usecase.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log,
	}
}

// List handles GET /api/transactions?type=&categoryId=&startDate=&endDate=
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.TransactionFilterRequest{
		Type:       query.Get("type"),
		CategoryID: query.Get("categoryId"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
	}

	items, err := h.service.List(r.Context(), userID, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list transactions")
		return
	}

	utils.ResponseSuccess(w, "Transactions retrieved successfully", items)
}

// Get handles GET /api/transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "get transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction retrieved successfully", item)
}

// Create handles POST /api/transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.TransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create transaction")
		return
	}

	utils.ResponseCreated(w, "Transaction created successfully", item)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req request.TransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction updated successfully", item)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(h.log, w, err, "delete transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction deleted successfully", nil)
}

// Summary handles GET /api/transactions/summary?period=week|month|year
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(h.log, w, err, "summarize transactions")
		return
	}

	utils.ResponseSuccess(w, "Summary retrieved successfully", summary)
}

// ExpensesByCategory handles GET /api/transactions/expenses-by-category?period=
func (h *TransactionHandler) ExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	rows, err := h.service.ExpensesByCategory(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(h.log, w, err, "group expenses")
		return
	}

	utils.ResponseSuccess(w, "Expenses retrieved successfully", rows)
}

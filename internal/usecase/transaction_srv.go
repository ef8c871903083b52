package usecase

import (
	"context"
	"math"
	"time"

	"finscope/internal/data/entity"
	"finscope/internal/data/repository"
	"finscope/internal/dto/request"
	"finscope/internal/dto/response"
	"finscope/pkg/apperror"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FilterAll is the list filter value that disables the type filter.
const FilterAll = "todas"

type TransactionService interface {
	List(ctx context.Context, userID uuid.UUID, req *request.TransactionFilterRequest) ([]response.TransactionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*response.TransactionResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, period string) (*response.SummaryResponse, error)
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, period string) ([]response.CategoryExpenseResponse, error)
}

type transactionService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  clock
}

func NewTransactionService(repo *repository.Repository, log *zap.Logger) TransactionService {
	return &transactionService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (ts *transactionService) List(ctx context.Context, userID uuid.UUID, req *request.TransactionFilterRequest) ([]response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	filter, err := buildFilter(req)
	if err != nil {
		return nil, err
	}

	items, err := ts.repo.Transaction.FindAll(ctx, userID, filter)
	if err != nil {
		ts.log.Error("Failed to list transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to list transactions", err)
	}

	data := make([]response.TransactionResponse, 0, len(items))
	for _, t := range items {
		data = append(data, response.TransactionToResponse(t))
	}
	return data, nil
}

// Get loads by id and then checks the caller owns it, so a foreign id is a 403, not a 404.
func (ts *transactionService) Get(ctx context.Context, id uuid.UUID) (*response.TransactionResponse, error) {
	t, err := ts.repo.Transaction.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to find transaction", err)
	}
	if t == nil {
		return nil, apperror.NotFound("Transaction not found")
	}

	if err := utils.CheckOwnership(ctx, t.UserID); err != nil {
		return nil, err
	}

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (ts *transactionService) Create(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
	t, category, err := ts.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	t.ID = uuid.New()
	t.CreatedAt = ts.now()

	if err := ts.repo.Transaction.Create(ctx, t); err != nil {
		return nil, ts.wrapWrite("failed to create transaction", err)
	}

	t.CategoryName = category.Name
	t.CategoryColor = category.Color

	ts.log.Info("Transaction created",
		zap.String("transaction_id", t.ID.String()),
		zap.String("user_id", userID.String()))

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (ts *transactionService) Update(ctx context.Context, userID, id uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
	t, category, err := ts.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	t.ID = id
	if err := ts.repo.Transaction.Update(ctx, t); err != nil {
		return nil, ts.wrapWrite("failed to update transaction", err)
	}

	t.CategoryName = category.Name
	t.CategoryColor = category.Color

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (ts *transactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := ts.repo.Transaction.Delete(ctx, id, userID); err != nil {
		return ts.wrapWrite("failed to delete transaction", err)
	}

	ts.log.Info("Transaction deleted",
		zap.String("transaction_id", id.String()),
		zap.String("user_id", userID.String()))
	return nil
}

func (ts *transactionService) Summary(ctx context.Context, userID uuid.UUID, period string) (*response.SummaryResponse, error) {
	name, since, err := periodStart(period, ts.now())
	if err != nil {
		return nil, err
	}

	summary, err := ts.repo.Transaction.Summary(ctx, userID, since)
	if err != nil {
		ts.log.Error("Failed to summarize transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to build summary", err)
	}

	return &response.SummaryResponse{
		Ingresos:           round2(summary.Income),
		Gastos:             round2(summary.Expense),
		Balance:            round2(summary.Balance()),
		TotalTransacciones: summary.TransactionCount,
		Period:             name,
		Since:              since,
	}, nil
}

func (ts *transactionService) ExpensesByCategory(ctx context.Context, userID uuid.UUID, period string) ([]response.CategoryExpenseResponse, error) {
	_, since, err := periodStart(period, ts.now())
	if err != nil {
		return nil, err
	}

	rows, err := ts.repo.Transaction.ExpensesByCategory(ctx, userID, since)
	if err != nil {
		ts.log.Error("Failed to group expenses", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to group expenses", err)
	}

	data := make([]response.CategoryExpenseResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, response.CategoryExpenseResponse{
			CategoryID:       row.CategoryID.String(),
			CategoryName:     row.CategoryName,
			CategoryColor:    row.CategoryColor,
			TotalAmount:      round2(row.TotalAmount),
			TransactionCount: row.TransactionCount,
		})
	}
	return data, nil
}

// prepare validates the body and resolves its category for the caller.
func (ts *transactionService) prepare(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*entity.Transaction, *entity.Category, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, nil, apperror.Validation("categoryId must be a valid UUID")
	}

	date, err := time.Parse(request.DateLayout, req.Date)
	if err != nil {
		return nil, nil, apperror.Validation("date must use YYYY-MM-DD")
	}

	category, err := ts.repo.Category.FindByID(ctx, categoryID)
	if err != nil {
		return nil, nil, apperror.Internal("failed to find category", err)
	}
	if category == nil || !category.VisibleTo(userID) {
		return nil, nil, apperror.Validation("Category not found")
	}

	entryType := entity.EntryType(req.Type)
	if category.Type != entryType {
		return nil, nil, apperror.Validation("Category type does not match transaction type")
	}

	return &entity.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          round2(req.Amount),
		Type:            entryType,
		Description:     req.Description,
		TransactionDate: date,
	}, category, nil
}

func (ts *transactionService) wrapWrite(message string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound, apperror.KindConflict:
		return err
	}
	ts.log.Error("Transaction write failed", zap.Error(err))
	return apperror.Internal(message, err)
}

func buildFilter(req *request.TransactionFilterRequest) (entity.TransactionFilter, error) {
	var filter entity.TransactionFilter

	if req.Type != "" && req.Type != FilterAll {
		t := entity.EntryType(req.Type)
		filter.Type = &t
	}

	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return filter, apperror.Validation("categoryId must be a valid UUID")
		}
		filter.CategoryID = &id
	}

	if req.StartDate != "" {
		d, err := time.Parse(request.DateLayout, req.StartDate)
		if err != nil {
			return filter, apperror.Validation("startDate must use YYYY-MM-DD")
		}
		filter.StartDate = &d
	}

	if req.EndDate != "" {
		d, err := time.Parse(request.DateLayout, req.EndDate)
		if err != nil {
			return filter, apperror.Validation("endDate must use YYYY-MM-DD")
		}
		filter.EndDate = &d
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, apperror.Validation("endDate must not be before startDate")
	}

	return filter, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

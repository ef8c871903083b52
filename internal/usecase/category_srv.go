package usecase

import (
	"context"
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

const defaultCategoryColor = "#6B7280"

type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID, entryType string) ([]response.CategoryResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Usage(ctx context.Context, userID uuid.UUID, period string) ([]response.CategoryUsageResponse, error)
}

type categoryService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  clock
}

func NewCategoryService(repo *repository.Repository, log *zap.Logger) CategoryService {
	return &categoryService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (cs *categoryService) List(ctx context.Context, userID uuid.UUID, entryType string) ([]response.CategoryResponse, error) {
	var filter *entity.EntryType
	if entryType != "" && entryType != FilterAll {
		t := entity.EntryType(entryType)
		if !t.Valid() {
			return nil, apperror.Validation("type must be one of ingreso, gasto")
		}
		filter = &t
	}

	categories, err := cs.repo.Category.FindVisible(ctx, userID, filter)
	if err != nil {
		return nil, apperror.Internal("failed to list categories", err)
	}

	data := make([]response.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		data = append(data, response.CategoryToResponse(c))
	}
	return data, nil
}

func (cs *categoryService) Create(ctx context.Context, userID uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	color := req.Color
	if color == "" {
		color = defaultCategoryColor
	}

	owner := userID
	category := &entity.Category{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: cs.now()},
		UserID:     &owner,
		Name:       req.Name,
		Type:       entity.EntryType(req.Type),
		Color:      color,
	}

	if err := cs.repo.Category.Create(ctx, category); err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil, err
		}
		cs.log.Error("Failed to create category", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to create category", err)
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (cs *categoryService) Update(ctx context.Context, userID, id uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	category, err := cs.findOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	newType := entity.EntryType(req.Type)
	if newType != category.Type {
		// transactions must keep the type of their category
		count, err := cs.repo.Category.CountTransactions(ctx, id)
		if err != nil {
			return nil, apperror.Internal("failed to count transactions", err)
		}
		if count > 0 {
			return nil, apperror.Conflict("Category has transactions and its type cannot be changed")
		}
	}

	category.Name = req.Name
	category.Type = newType
	if req.Color != "" {
		category.Color = req.Color
	}

	if err := cs.repo.Category.Update(ctx, category); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("failed to update category", err)
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (cs *categoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := cs.findOwned(ctx, id); err != nil {
		return err
	}

	count, err := cs.repo.Category.CountTransactions(ctx, id)
	if err != nil {
		return apperror.Internal("failed to count transactions", err)
	}
	if count > 0 {
		return apperror.Conflict("Category has transactions and cannot be deleted")
	}

	// the foreign key still guards a transaction inserted since the count
	if err := cs.repo.Category.Delete(ctx, id, userID); err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindConflict, apperror.KindNotFound:
			return err
		}
		return apperror.Internal("failed to delete category", err)
	}

	cs.log.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (cs *categoryService) Usage(ctx context.Context, userID uuid.UUID, period string) ([]response.CategoryUsageResponse, error) {
	_, since, err := periodStart(period, cs.now())
	if err != nil {
		return nil, err
	}

	rows, err := cs.repo.Category.Usage(ctx, userID, since)
	if err != nil {
		return nil, apperror.Internal("failed to load category usage", err)
	}

	data := make([]response.CategoryUsageResponse, 0, len(rows))
	for _, u := range rows {
		data = append(data, response.CategoryUsageResponse{
			CategoryID:       u.CategoryID.String(),
			Name:             u.Name,
			Type:             string(u.Type),
			Color:            u.Color,
			TransactionCount: u.TransactionCount,
			TotalAmount:      round2(u.TotalAmount),
		})
	}
	return data, nil
}

// findOwned rejects system defaults and other users' rows.
func (cs *categoryService) findOwned(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := cs.repo.Category.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to find category", err)
	}
	if category == nil {
		return nil, apperror.NotFound("Category not found")
	}
	if category.IsDefault || category.UserID == nil {
		return nil, apperror.Authorization("Default categories cannot be modified")
	}
	if err := utils.CheckOwnership(ctx, *category.UserID); err != nil {
		return nil, err
	}
	return category, nil
}

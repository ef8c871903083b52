package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finscope/internal/data/entity"
	"finscope/pkg/apperror"
	"finscope/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CategoryRepository interface {
	FindVisible(ctx context.Context, userID uuid.UUID, entryType *entity.EntryType) ([]*entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountTransactions(ctx context.Context, id uuid.UUID) (int64, error)
	Usage(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryUsage, error)
}

type categoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCategoryRepository(db database.PgxIface, log *zap.Logger) CategoryRepository {
	return &categoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "category")),
	}
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Type,
		&c.Color,
		&c.IsDefault,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindVisible returns system categories plus the user's own, defaults first.
func (r *categoryRepository) FindVisible(ctx context.Context, userID uuid.UUID, entryType *entity.EntryType) ([]*entity.Category, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, user_id, name, type, color, is_default, created_at
		FROM categories
		WHERE (user_id IS NULL OR user_id = $1)
	`)

	args := []any{userID}
	if entryType != nil {
		queryBuilder.WriteString(" AND type = $2")
		args = append(args, *entryType)
	}
	queryBuilder.WriteString(" ORDER BY is_default DESC, name ASC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to list categories",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find categories for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.log.Error("Failed to scan category row", zap.Error(err))
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	query := `
		SELECT id, user_id, name, type, color, is_default, created_at
		FROM categories
		WHERE id = $1
	`

	c, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find category", zap.Error(err), zap.String("category_id", id.String()))
		return nil, fmt.Errorf("find category %s: %w", id.String(), err)
	}

	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, color, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Type,
		category.Color,
		category.IsDefault,
		category.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create category", zap.Error(err), zap.String("name", category.Name))
		return fmt.Errorf("create category %s: %w", category.Name, err)
	}

	return nil
}

// Update only touches custom rows owned by category.UserID.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $3, type = $4, color = $5
		WHERE id = $1 AND user_id = $2 AND is_default = FALSE
	`

	result, err := r.db.Exec(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Type,
		category.Color,
	)
	if err != nil {
		r.log.Error("Failed to update category", zap.Error(err), zap.String("category_id", category.ID.String()))
		return fmt.Errorf("update category %s: %w", category.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("Category not found")
	}

	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2 AND is_default = FALSE`

	result, err := r.db.Exec(ctx, query, id, userID)
	if isForeignKeyViolation(err) {
		return apperror.Conflict("Category has transactions and cannot be deleted")
	}
	if err != nil {
		r.log.Error("Failed to delete category", zap.Error(err), zap.String("category_id", id.String()))
		return fmt.Errorf("delete category %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("Category not found")
	}

	return nil
}

func (r *categoryRepository) CountTransactions(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE category_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		r.log.Error("Failed to count category transactions", zap.Error(err), zap.String("category_id", id.String()))
		return 0, fmt.Errorf("count transactions for category %s: %w", id.String(), err)
	}

	return count, nil
}

// Usage reports how much each visible category was used by the user since the cutoff.
func (r *categoryRepository) Usage(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryUsage, error) {
	query := `
		SELECT c.id, c.name, c.type, c.color,
		       COUNT(t.id) AS transaction_count,
		       COALESCE(SUM(t.amount), 0)::float8 AS total_amount
		FROM categories c
		LEFT JOIN transactions t
		       ON t.category_id = c.id AND t.user_id = $1 AND t.transaction_date >= $2
		WHERE c.user_id IS NULL OR c.user_id = $1
		GROUP BY c.id, c.name, c.type, c.color
		ORDER BY transaction_count DESC, c.name ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		r.log.Error("Failed to load category usage", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("category usage for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var usage []*entity.CategoryUsage
	for rows.Next() {
		var u entity.CategoryUsage
		if err := rows.Scan(&u.CategoryID, &u.Name, &u.Type, &u.Color, &u.TransactionCount, &u.TotalAmount); err != nil {
			r.log.Error("Failed to scan category usage row", zap.Error(err))
			return nil, fmt.Errorf("scan category usage row: %w", err)
		}
		usage = append(usage, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category usage rows: %w", err)
	}

	return usage, nil
}

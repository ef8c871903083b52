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

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindAll(ctx context.Context, userID uuid.UUID, filter entity.TransactionFilter) ([]*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, since time.Time) (*entity.TransactionSummary, error)
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryExpense, error)
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount::float8, t.type, t.description,
	       t.transaction_date, t.created_at, c.name, c.color
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Amount,
		&t.Type,
		&t.Description,
		&t.TransactionDate,
		&t.CreatedAt,
		&t.CategoryName,
		&t.CategoryColor,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, amount, type, description,
		                          transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.CategoryID,
		t.Amount,
		t.Type,
		t.Description,
		t.TransactionDate,
		t.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return apperror.NotFound("Category not found")
	}
	if err != nil {
		r.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("user_id", t.UserID.String()),
		)
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	query := transactionSelect + ` WHERE t.id = $1`

	t, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction", zap.Error(err), zap.String("transaction_id", id.String()))
		return nil, fmt.Errorf("find transaction %s: %w", id.String(), err)
	}

	return t, nil
}

// FindAll lists the user's transactions, newest first, applying the optional filters.
func (r *transactionRepository) FindAll(ctx context.Context, userID uuid.UUID, filter entity.TransactionFilter) ([]*entity.Transaction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(transactionSelect)
	queryBuilder.WriteString(` WHERE t.user_id = $1`)

	args := []any{userID}
	argCount := 2

	if filter.Type != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.type = $%d", argCount))
		args = append(args, *filter.Type)
		argCount++
	}
	if filter.CategoryID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.category_id = $%d", argCount))
		args = append(args, *filter.CategoryID)
		argCount++
	}
	if filter.StartDate != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.transaction_date >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}
	if filter.EndDate != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.transaction_date <= $%d", argCount))
		args = append(args, *filter.EndDate)
	}

	queryBuilder.WriteString(" ORDER BY t.transaction_date DESC, t.created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to list transactions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find transactions for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var transactions []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return transactions, nil
}

// Update is scoped to the owner; a foreign id affects zero rows.
func (r *transactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $3, amount = $4, type = $5, description = $6, transaction_date = $7
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.CategoryID,
		t.Amount,
		t.Type,
		t.Description,
		t.TransactionDate,
	)
	if isForeignKeyViolation(err) {
		return apperror.NotFound("Category not found")
	}
	if err != nil {
		r.log.Error("Failed to update transaction", zap.Error(err), zap.String("transaction_id", t.ID.String()))
		return fmt.Errorf("update transaction %s: %w", t.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("Transaction not found")
	}

	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.log.Error("Failed to delete transaction", zap.Error(err), zap.String("transaction_id", id.String()))
		return fmt.Errorf("delete transaction %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("Transaction not found")
	}

	return nil
}

func (r *transactionRepository) Summary(ctx context.Context, userID uuid.UUID, since time.Time) (*entity.TransactionSummary, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'ingreso' THEN amount ELSE 0 END), 0)::float8,
		       COALESCE(SUM(CASE WHEN type = 'gasto' THEN amount ELSE 0 END), 0)::float8,
		       COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND transaction_date >= $2
	`

	var s entity.TransactionSummary
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&s.Income, &s.Expense, &s.TransactionCount); err != nil {
		r.log.Error("Failed to summarize transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("summarize transactions for %s: %w", userID.String(), err)
	}

	return &s, nil
}

func (r *transactionRepository) ExpensesByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryExpense, error) {
	query := `
		SELECT c.id, c.name, c.color, SUM(t.amount)::float8, COUNT(t.id)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = 'gasto' AND t.transaction_date >= $2
		GROUP BY c.id, c.name, c.color
		ORDER BY SUM(t.amount) DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		r.log.Error("Failed to group expenses", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("expenses by category for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var expenses []*entity.CategoryExpense
	for rows.Next() {
		var e entity.CategoryExpense
		if err := rows.Scan(&e.CategoryID, &e.CategoryName, &e.CategoryColor, &e.TotalAmount, &e.TransactionCount); err != nil {
			r.log.Error("Failed to scan expense row", zap.Error(err))
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}

	return expenses, nil
}

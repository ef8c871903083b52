package repository

import (
	"context"
	"testing"
	"time"

	"finscope/internal/data/entity"
	"finscope/pkg/apperror"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "category_id", "amount", "type", "description",
	"transaction_date", "created_at", "name", "color",
}

func TestTransactionRepository_FindAllAppliesFilters(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock, zap.NewNop())
	userID, categoryID := uuid.New(), uuid.New()
	expense := entity.EntryExpense
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(transactionColumns).
		AddRow(uuid.New(), userID, categoryID, 45.50, entity.EntryExpense, "mercado", date, date, "Alimentacion", "#EF4444")
	mock.ExpectQuery("FROM transactions t").
		WithArgs(userID, expense, categoryID, start).
		WillReturnRows(rows)

	list, err := repo.FindAll(context.Background(), userID, entity.TransactionFilter{
		Type:       &expense,
		CategoryID: &categoryID,
		StartDate:  &start,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 45.50, list[0].Amount)
	assert.Equal(t, "Alimentacion", list[0].CategoryName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_UpdateForeignRowIsNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock, zap.NewNop())
	tx := &entity.Transaction{
		BaseSimple:      entity.BaseSimple{ID: uuid.New()},
		UserID:          uuid.New(),
		CategoryID:      uuid.New(),
		Amount:          10,
		Type:            entity.EntryIncome,
		TransactionDate: time.Now(),
	}

	mock.ExpectExec("UPDATE transactions").
		WithArgs(tx.ID, tx.UserID, tx.CategoryID, tx.Amount, tx.Type, tx.Description, tx.TransactionDate).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), tx)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTransactionRepository_Summary(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock, zap.NewNop())
	userID := uuid.New()
	since := time.Date(2023, 12, 16, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM transactions").
		WithArgs(userID, since).
		WillReturnRows(pgxmock.NewRows([]string{"income", "expense", "count"}).AddRow(1000.0, 45.5, int64(2)))

	s, err := repo.Summary(context.Background(), userID, since)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, s.Income)
	assert.Equal(t, 45.5, s.Expense)
	assert.Equal(t, 954.5, s.Balance())
	assert.Equal(t, int64(2), s.TransactionCount)
}

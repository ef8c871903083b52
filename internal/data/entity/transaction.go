package entity

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	BaseSimple
	UserID          uuid.UUID `db:"user_id"`
	CategoryID      uuid.UUID `db:"category_id"`
	Amount          float64   `db:"amount"`
	Type            EntryType `db:"type"`
	Description     string    `db:"description"`
	TransactionDate time.Time `db:"transaction_date"`

	// joined from categories
	CategoryName  string `db:"category_name"`
	CategoryColor string `db:"category_color"`
}

type TransactionFilter struct {
	Type       *EntryType
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

type TransactionSummary struct {
	Income           float64
	Expense          float64
	TransactionCount int64
}

func (s TransactionSummary) Balance() float64 {
	return s.Income - s.Expense
}

type CategoryExpense struct {
	CategoryID       uuid.UUID `db:"category_id"`
	CategoryName     string    `db:"category_name"`
	CategoryColor    string    `db:"category_color"`
	TotalAmount      float64   `db:"total_amount"`
	TransactionCount int64     `db:"transaction_count"`
}

package entity

import "github.com/google/uuid"

type EntryType string

const (
	EntryIncome  EntryType = "ingreso"
	EntryExpense EntryType = "gasto"
)

func (t EntryType) Valid() bool {
	return t == EntryIncome || t == EntryExpense
}

// Category is a system default when UserID is nil.
type Category struct {
	BaseSimple
	UserID    *uuid.UUID `db:"user_id"`
	Name      string     `db:"name"`
	Type      EntryType  `db:"type"`
	Color     string     `db:"color"`
	IsDefault bool       `db:"is_default"`
}

func (c *Category) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}

// VisibleTo reports whether userID may attach transactions to the category.
func (c *Category) VisibleTo(userID uuid.UUID) bool {
	return c.UserID == nil || *c.UserID == userID
}

type CategoryUsage struct {
	CategoryID       uuid.UUID `db:"category_id"`
	Name             string    `db:"name"`
	Type             EntryType `db:"type"`
	Color            string    `db:"color"`
	TransactionCount int64     `db:"transaction_count"`
	TotalAmount      float64   `db:"total_amount"`
}

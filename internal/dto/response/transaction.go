package response

import (
	"time"

	"finscope/internal/data/entity"
)

type TransactionResponse struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"categoryId"`
	CategoryName  string    `json:"categoryName,omitempty"`
	CategoryColor string    `json:"categoryColor,omitempty"`
	Amount        float64   `json:"amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SummaryResponse struct {
	Ingresos           float64   `json:"ingresos"`
	Gastos             float64   `json:"gastos"`
	Balance            float64   `json:"balance"`
	TotalTransacciones int64     `json:"totalTransacciones"`
	Period             string    `json:"period"`
	Since              time.Time `json:"since"`
}

type CategoryExpenseResponse struct {
	CategoryID       string  `json:"categoryId"`
	CategoryName     string  `json:"categoryName"`
	CategoryColor    string  `json:"categoryColor"`
	TotalAmount      float64 `json:"totalAmount"`
	TransactionCount int64   `json:"transactionCount"`
}

func TransactionToResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		CategoryID:    t.CategoryID.String(),
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Description:   t.Description,
		Date:          t.TransactionDate.Format("2006-01-02"),
		CreatedAt:     t.CreatedAt,
	}
}

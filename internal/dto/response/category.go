package response

import (
	"time"

	"finscope/internal/data/entity"
)

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"isDefault"`
	IsOwn     bool      `json:"isOwn"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryUsageResponse struct {
	CategoryID       string  `json:"categoryId"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Color            string  `json:"color"`
	TransactionCount int64   `json:"transactionCount"`
	TotalAmount      float64 `json:"totalAmount"`
}

func CategoryToResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
		IsOwn:     c.UserID != nil,
		CreatedAt: c.CreatedAt,
	}
}

package adaptor

import (
	"finscope/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Admin       *AdminHandler
	Transaction *TransactionHandler
	Category    *CategoryHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		User:        NewUserHandler(service.User, log),
		Admin:       NewAdminHandler(service.User, log),
		Transaction: NewTransactionHandler(service.Transaction, log),
		Category:    NewCategoryHandler(service.Category, log),
	}
}

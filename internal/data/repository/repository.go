package repository

import (
	"finscope/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Role        RoleRepository
	Session     SessionRepository
	OTP         OTPRepository
	Category    CategoryRepository
	Transaction TransactionRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Role:        NewRoleRepository(db, log),
		Session:     NewSessionRepository(db, log),
		OTP:         NewOTPRepository(db, log),
		Category:    NewCategoryRepository(db, log),
		Transaction: NewTransactionRepository(db, log),
	}
}

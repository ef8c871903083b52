package usecase

import (
	"time"

	"finscope/internal/data/repository"
	"finscope/pkg/mailer"
	"finscope/pkg/ratelimit"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	User        UserService
	Transaction TransactionService
	Category    CategoryService
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Repo    *repository.Repository
	Tokens  *token.Manager
	Sender  mailer.Sender
	Limiter ratelimit.Limiter
	Config  *utils.Config
	Log     *zap.Logger
}

func NewService(deps Deps) *Service {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Noop{}
	}

	return &Service{
		Auth:        NewAuthService(deps.Repo, deps.Tokens, deps.Sender, deps.Limiter, deps.Config, deps.Log),
		User:        NewUserService(deps.Repo, deps.Log),
		Transaction: NewTransactionService(deps.Repo, deps.Log),
		Category:    NewCategoryService(deps.Repo, deps.Log),
	}
}

type clock func() time.Time

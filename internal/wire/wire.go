package wire

import (
	"context"
	"net/http"
	"time"

	"finscope/internal/adaptor"
	"finscope/internal/usecase"
	"finscope/pkg/middleware"
	"finscope/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the router and the services started alongside it.
type App struct {
	Router  *chi.Mux
	Janitor *usecase.Janitor
}

// Wiring builds services and handlers and mounts every route.
func Wiring(deps usecase.Deps, db Pinger) *App {
	service := usecase.NewService(deps)
	handler := adaptor.NewHandler(service, deps.Log)

	router := setupRouter(handler, deps, db)

	interval := time.Duration(deps.Config.OTP.CleanupIntervalMinutes) * time.Minute

	return &App{
		Router:  router,
		Janitor: usecase.NewJanitor(deps.Repo, interval, deps.Log),
	}
}

func setupRouter(handler *adaptor.Handler, deps usecase.Deps, db Pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Recover(deps.Log))
	r.Use(middleware.CORS(deps.Config.App.AllowOrigin))

	gate := gates{
		authenticate: middleware.Authenticate(deps.Tokens, deps.Repo.Session, deps.Repo.User, deps.Log),
		admin:        middleware.RequireAdmin(deps.Log),
	}

	wireAuth(r, handler.Auth, gate)
	wireUser(r, handler.User, handler.Admin, gate)
	wireTransaction(r, handler.Transaction, gate)
	wireCategory(r, handler.Category, gate)
	wireOps(r, db, deps.Log)

	return r
}

type gates struct {
	authenticate func(http.Handler) http.Handler
	admin        func(http.Handler) http.Handler
}

// ==================== OPERATIONAL ROUTES ====================
func wireOps(r chi.Router, db Pinger, log *zap.Logger) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("Readiness check failed", zap.Error(err))
			utils.ResponseError(w, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
		utils.ResponseSuccess(w, "Ready", nil)
	})

	r.Handle("/metrics", promhttp.Handler())
}

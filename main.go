package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finscope/cmd"
	"finscope/internal/data/repository"
	"finscope/internal/usecase"
	"finscope/internal/wire"
	"finscope/pkg/database"
	"finscope/pkg/mailer"
	"finscope/pkg/ratelimit"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

const usage = `usage: finscope [command]

commands:
  serve          run migrations and start the HTTP server (default)
  migrate        run database migrations and exit
  create-admin   create an administrator: create-admin <email> <firstName> [lastName]`

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = serve(ctx, config, logger)
	case "migrate":
		err = database.Migrate(ctx, config.Database)
	case "create-admin":
		err = createAdmin(ctx, config, logger, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func serve(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	if err := database.Migrate(ctx, config.Database); err != nil {
		return err
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	sender, err := mailer.NewSender(config, logger)
	if err != nil {
		return err
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if config.Redis.Addr != "" {
		client, err := ratelimit.Connect(ctx, ratelimit.Config{Addr: config.Redis.Addr, DB: config.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()

		window := time.Duration(config.OTP.ExpiryMinutes) * time.Minute
		limiter = ratelimit.NewRedisLimiter(client, "finscope:verify", config.OTP.MaxAttempts, window)
		logger.Info("Verification rate limiting enabled", zap.Int("max_attempts", config.OTP.MaxAttempts))
	}

	repos := repository.NewRepository(db, logger)
	tokens := token.NewManager(config.JWT.Secret, config.JWT.Issuer, time.Duration(config.JWT.ExpiryHours)*time.Hour)

	app := wire.Wiring(usecase.Deps{
		Repo:    repos,
		Tokens:  tokens,
		Sender:  sender,
		Limiter: limiter,
		Config:  config,
		Log:     logger,
	}, db)

	go app.Janitor.Run(ctx)

	return cmd.APIServer(ctx, app.Router, config.App.Port, logger)
}

func createAdmin(ctx context.Context, config *utils.Config, logger *zap.Logger, args []string) error {
	if err := database.Migrate(ctx, config.Database); err != nil {
		return err
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return cmd.CreateAdmin(ctx, repository.NewUserRepository(db, logger), args, os.Stdout)
}

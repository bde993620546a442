package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/examplanner/examplanner/internal/app"
	"github.com/examplanner/examplanner/internal/auth"
	"github.com/examplanner/examplanner/internal/platform/cache"
	"github.com/examplanner/examplanner/internal/platform/db"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/subjects"
	"github.com/examplanner/examplanner/internal/todos"
	"github.com/examplanner/examplanner/internal/token"
	"github.com/examplanner/examplanner/internal/users"
	"github.com/examplanner/examplanner/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis only backs the job queue here. The API stays up without it,
	// so a failed probe is a warning, not a startup error.
	if redisClient, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis probe", slog.Any("error", err))
	} else if err := redisClient.Close(); err != nil {
		logger.Warn("redis close", slog.Any("error", err))
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}

	var verifier auth.AssertionVerifier
	if cfg.GoogleClientID != "" {
		verifier, err = auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			logger.Error("init google verifier", slog.Any("error", err))
			os.Exit(1)
		}
	}

	rbacMiddleware := rbac.Middleware{Logger: logger, Current: auth.CurrentActor}

	userRepo := users.NewRepository(dbpool)
	authService := auth.NewService(userRepo, codec, verifier)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware, cfg.IsProduction())

	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService, rbacMiddleware)

	subjectRepo := subjects.NewRepository(dbpool)
	subjectService := subjects.NewService(subjectRepo)
	subjectHandler := subjects.NewHandler(logger, subjectService)

	todoRepo := todos.NewRepository(dbpool)
	todoService := todos.NewService(todoRepo)
	todoHandler := todos.NewHandler(logger, todoService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		UsersHandler:    userHandler,
		SubjectsHandler: subjectHandler,
		TodosHandler:    todoHandler,
		JobHandler:      jobHandler,
		AuthService:     authService,
		RBACMiddleware:  rbacMiddleware,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/aihubtotal/backend/internal/adapters"
	"github.com/aihubtotal/backend/internal/auth"
	"github.com/aihubtotal/backend/internal/billing"
	"github.com/aihubtotal/backend/internal/captcha"
	"github.com/aihubtotal/backend/internal/config"
	"github.com/aihubtotal/backend/internal/handlers"
	"github.com/aihubtotal/backend/internal/metering"
	"github.com/aihubtotal/backend/internal/middleware"
	"github.com/aihubtotal/backend/internal/repository"
	"github.com/aihubtotal/backend/internal/retention"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		slog.Error("Schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	accountRepo := repository.NewAccountRepo(pool)
	usageRepo := repository.NewUsageRepo(pool)
	transactionRepo := repository.NewTransactionRepo(pool)

	// Metering core
	engine := metering.NewEngine(accountRepo, usageRepo, cfg.FreeLimits)

	// Billing
	billingSvc := billing.NewService(pool, accountRepo, transactionRepo, cfg.Packages)
	billingHandler := billing.NewHandler(billingSvc, logger)

	// Auth
	verifier := captcha.NewVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaEndpoint, logger)
	authSvc := auth.NewService(accountRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, verifier, engine, logger)

	// Capability adapters
	gemini := adapters.NewGeminiClient(cfg.GeminiEndpoint, cfg.GoogleAPIKey)
	hf := adapters.NewHuggingFaceClient(cfg.HFEndpoint, cfg.HuggingFaceToken)
	tryon := adapters.NewTryOnClient(cfg.TryOnEndpoint, cfg.HuggingFaceToken)

	genHandler := &handlers.GenerateHandler{
		Engine:         engine,
		Gemini:         gemini,
		Video:          hf,
		TryOnBackend:   tryon,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}

	// Usage retention sweeper, only when an operator enabled it.
	if cfg.UsageRetentionDays > 0 {
		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			slog.Error("Failed to create River migrator", "error", err)
			os.Exit(1)
		}
		if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
			slog.Error("River migrate up failed", "error", err)
			os.Exit(1)
		}

		workers := river.NewWorkers()
		river.AddWorker(workers, retention.NewSweepWorker(usageRepo, logger))

		riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: 1},
			},
			Workers: workers,
			PeriodicJobs: []*river.PeriodicJob{
				river.NewPeriodicJob(
					river.PeriodicInterval(24*time.Hour),
					func() (river.JobArgs, *river.InsertOpts) {
						return retention.SweepArgs{RetainDays: cfg.UsageRetentionDays}, nil
					},
					&river.PeriodicJobOpts{RunOnStart: true},
				),
			},
		})
		if err != nil {
			slog.Error("Failed to create River client", "error", err)
			os.Exit(1)
		}

		riverCtx, stopRiver := context.WithCancel(ctx)
		defer stopRiver()
		go func() {
			if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
				slog.Error("River client stopped", "error", err)
			}
		}()
		slog.Info("Usage retention sweeper enabled", "retain_days", cfg.UsageRetentionDays)
	}

	authMW := middleware.JWTAuth(authSvc, accountRepo)

	mux := http.NewServeMux()
	RegisterRoutes(mux, cfg.RecaptchaSiteKey, authMW, authHandler, billingHandler, genHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

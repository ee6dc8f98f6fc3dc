package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SurajRakshe/Expense-Tracker/internal/app/migrate"
	"github.com/SurajRakshe/Expense-Tracker/internal/config"
	httpx "github.com/SurajRakshe/Expense-Tracker/internal/http"
	"github.com/SurajRakshe/Expense-Tracker/internal/logger"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository/postgres"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/auth"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/category"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/transaction"
	"github.com/SurajRakshe/Expense-Tracker/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	codec := token.NewCodec(cfg.JWTSecret, "expense-tracker", cfg.TokenTTL)

	authSvc := auth.New(repo, codec, log)
	categorySvc := category.New(repo, log)
	txnSvc := transaction.New(repo, repo, log)

	if err := categorySvc.EnsureDefaults(ctx); err != nil {
		log.Error("failed to seed default categories", "error", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(log, authSvc, categorySvc, txnSvc, cfg.AllowedOrigins, pool.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/savings-ledger/internal/app"
	"github.com/segyhp/savings-ledger/internal/config"
	"github.com/segyhp/savings-ledger/internal/handler"
	"github.com/segyhp/savings-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	// Initialize storage
	storage, err := app.OpenStorage(cfg)
	if err != nil {
		log.Error("failed to initialize storage", slog.String("backend", cfg.Database.Backend), slog.Any("error", err))
		os.Exit(1)
	}
	defer storage.Close()

	// Initialize Redis
	summaryCache := app.OpenSummaryCache(cfg)
	defer summaryCache.Close()

	services := app.NewServices(cfg, storage, summaryCache, log)

	checks := map[string]handler.Checker{"storage": storage.Ping}
	if summaryCache.Ping != nil {
		checks["redis"] = summaryCache.Ping
	}
	healthHandler := handler.NewHealthHandler(cfg.Health.Timeout, checks)

	validate := handler.NewValidator()
	router := handler.NewRouter(log, healthHandler,
		handler.NewMemberHandler(services.Members, validate, log),
		handler.NewMeetingHandler(services.Meetings, validate, log),
		handler.NewShareHandler(services.Shares, validate, log),
		handler.NewLoanHandler(services.Loans, validate, log),
		handler.NewWelfareHandler(services.Welfare, validate, log),
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Server.Env),
			slog.String("backend", cfg.Database.Backend),
			slog.Bool("redis", cfg.Redis.Enabled))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}

	log.Info("server exited")
}

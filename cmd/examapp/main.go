package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"examapp/internal/config"
	"examapp/internal/http/handlers"
	applog "examapp/internal/log"
	"examapp/internal/repos"
)

func gracefulShutdown(app *fiber.App, db *sqlx.DB, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		logger.Error("Error closing database", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func main() {
	cfg, cfgErr := config.Load()

	logger, err := applog.New(cfg.Env, cfg.LogFile)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()
	applog.SetLogger(logger)
	if cfgErr != nil {
		logger.Warn("Using environment and defaults only", zap.Error(cfgErr))
	}

	logger.Info("Starting examapp",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
		zap.String("db_dsn", cfg.DBDSN),
		zap.String("media_dir", cfg.MediaDir),
		zap.String("log_file", cfg.LogFile),
	)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	logger.Info("Database ready", zap.String("dsn", cfg.DBDSN))

	app, _ := handlers.NewApp(cfg, db)

	done := make(chan bool, 1)
	go gracefulShutdown(app, db, logger, done)

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	logger.Info("Graceful shutdown complete")
}

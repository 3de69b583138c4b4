package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/apptbook/internal/config"
	"github.com/dukerupert/apptbook/internal/database"
	"github.com/dukerupert/apptbook/internal/logging"
	"github.com/dukerupert/apptbook/internal/server"
)

func main() {
	configPath := os.Getenv("APPTBOOK_CONFIG")
	if configPath == "" {
		configPath = "apptbook.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Postmark.Token == "" {
		logger.Warn("postmark token not set; appointment emails will not be delivered")
	}

	srv := server.New(db, cfg, nil, logger)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	if rl := srv.RateLimiter(); rl != nil {
		go rl.Run(bgCtx, 5*time.Minute)
	}

	go func() {
		logger.Info("apptbook starting", "addr", cfg.Listen, "base_url", cfg.BaseURL, "timezone", cfg.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Let in-flight calendar and email work finish before the database closes.
	srv.Dispatcher().Wait()
}

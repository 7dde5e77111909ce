package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"scholarsync/internal/api"
	"scholarsync/internal/app"
	"scholarsync/internal/config"
	"scholarsync/internal/logging"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("app init failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var wc api.WorkflowClient
	if cfg.TemporalAddress != "" {
		c, err := client.NewLazyClient(client.Options{
			HostPort: cfg.TemporalAddress,
			Logger:   tlog.NewStructuredLogger(logger.With("component", "temporal")),
		})
		if err != nil {
			logger.Warn("temporal client unavailable, durable runs disabled", "error", err)
		} else {
			defer c.Close()
			wc = c
		}
	}

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           api.NewServer(cfg, a.Orchestrator(), a.ActivityLog, wc, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("scholarsync api listening", "addr", cfg.APIAddr, "llm_providers", cfg.LLMProviders, "durable", wc != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("scholarsync api stopped")
}

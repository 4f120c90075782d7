// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirehub-ranking/internal/application"
	"hirehub-ranking/internal/config"
	"hirehub-ranking/internal/infra/api"
	"hirehub-ranking/internal/infra/api/apiv1"
	"hirehub-ranking/internal/infra/api/auth"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/metrics"
	"hirehub-ranking/internal/infra/sched"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Stores, adapters, use cases ----
	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	app.Start(ctx)

	// ---- Stale run sweeper ----
	reaper := sched.NewStaleReaper(cfg.Ranking.ReapInterval, app.Ranking, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP API ----
	am := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.TokenTTL, !cfg.Runtime.Dev)
	srv := apiv1.NewServer(app.Ranking, app.Status, app.Resumes, logger,
		apiv1.WithRateLimit(app.Limiter, cfg.HTTP.RankRateLimit, cfg.HTTP.RankRateWindow))
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           api.NewRouter(srv, am, cfg.HTTP.RequestTimeout, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	// in-flight runs see the cancellation and record themselves as failed
	cancel()
	if err := app.Close(); err != nil {
		logger.Warn().Err(err).Msg("close")
	}
	logger.Info().Msg("stopped")
}

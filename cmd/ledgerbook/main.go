package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledgerbook/internal/cache"
	"ledgerbook/internal/cli"
	apphttp "ledgerbook/internal/http"
	"ledgerbook/internal/log"
	"ledgerbook/internal/middleware/ratelimit"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)

	caches := cache.NewManager()
	caches.StartCleanup(10 * time.Minute)
	svc := cli.NewLedgerService(cfg, res, logger, caches)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		OwnerHeader: cfg.OwnerHeader,
		Logger:      logger,
		Ready:       res.Ready,
		RateLimit:   ratelimit.DefaultConfig(),
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledgerbook server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledgerbook/internal/cli"
	"ledgerbook/internal/log"
	gsheet "ledgerbook/internal/sheets/google"
	"ledgerbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Publisher == nil {
		logger.Error("AMQP broker unavailable, the worker has nothing to consume")
		_ = res.Close()
		os.Exit(1)
	}

	// Mutations happen in other processes, so rollups are never cached here.
	svc := cli.NewLedgerService(cfg, res, logger, nil)

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSummarySheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	exporter := worker.NewExportWorker(svc, sheetsClient, worker.Config{ExportInterval: cfg.ExportInterval}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := exporter.Stop(ctx); err != nil {
			logger.Error("Export worker stop error", log.FieldError, err)
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if err := exporter.Start(ctx); err != nil {
		logger.Error("Failed to start export worker", log.FieldError, err)
		os.Exit(1)
	}

	go func() {
		err := res.Publisher.ConsumeLedgerChanged(ctx, exporter.HandleLedgerChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/XaviGIT/budget-app/internal/amqp"
	"github.com/XaviGIT/budget-app/internal/config"
	applog "github.com/XaviGIT/budget-app/internal/log"
	"github.com/XaviGIT/budget-app/internal/services"
	"github.com/XaviGIT/budget-app/internal/sheets"
	gsheet "github.com/XaviGIT/budget-app/internal/sheets/google"
	"github.com/XaviGIT/budget-app/internal/storage"
	"github.com/XaviGIT/budget-app/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting budget-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var snapshot sheets.BudgetSnapshotWriter
	if cfg.SnapshotExportEnabled() {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		snapshot = client
		logger.Info("Google Sheets snapshot export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets snapshot export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	budget := services.NewBudgetService(store)
	auditWorker := worker.NewAuditWorker(store, budget, snapshot)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(ctx, func(event *amqp.LedgerEvent) error {
			return auditWorker.HandleLedgerEvent(ctx, event)
		})
	})

	g.Go(func() error {
		return auditWorker.RunPeriodicAudit(ctx, cfg.AuditInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/extractor"
	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/service"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/config"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/lock"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/metrics"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/storage"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/tracing"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	TransactionStorage storage.Storage
	PayoutStorage      storage.Storage

	Extractor extractor.TextExtractor
	Lock      *lock.FileLock
	Metrics   *metrics.Recorder
	Tracing   *tracing.Provider

	// Pipelines
	Transactions *service.TransactionPipeline
	Payouts      *service.PayoutPipeline
	Runner       *service.Runner
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initExtractor(); err != nil {
		return nil, fmt.Errorf("failed to init extractor: %w", err)
	}

	if err := deps.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	deps.initPipelines()

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initStorage creates both pipeline directory trees
func (d *Dependencies) initStorage() error {
	tx, err := storage.NewLocalStorage(layoutFor(d.Config.Transactions))
	if err != nil {
		return err
	}
	d.TransactionStorage = tx

	po, err := storage.NewLocalStorage(layoutFor(d.Config.Payouts))
	if err != nil {
		return err
	}
	d.PayoutStorage = po

	d.Logger.Debug("storage initialized",
		slog.String("transactions", d.Config.Transactions.Dir),
		slog.String("payouts", d.Config.Payouts.Dir),
	)
	return nil
}

func (d *Dependencies) initExtractor() error {
	ex, err := extractor.New(d.Config.PDF)
	if err != nil {
		return err
	}
	d.Extractor = ex
	return nil
}

func (d *Dependencies) initTracing() error {
	p, err := tracing.New(d.Config.Run.TracesFile)
	if err != nil {
		return err
	}
	d.Tracing = p
	return nil
}

// Close flushes and releases what InitDependencies opened.
func (d *Dependencies) Close(ctx context.Context) error {
	return d.Tracing.Shutdown(ctx)
}

// initPipelines wires the pipelines into the runner. Transactions run first.
func (d *Dependencies) initPipelines() {
	d.Transactions = service.NewTransactionPipeline(d.TransactionStorage, d.Extractor, d.Logger).
		WithWriteEmpty(d.Config.Transactions.WriteEmpty)
	d.Payouts = service.NewPayoutPipeline(d.PayoutStorage, d.Logger).
		WithWriteEmpty(d.Config.Payouts.WriteEmpty)

	d.Metrics = metrics.New(d.Config.Run.MetricsTextfile)

	d.Runner = service.NewRunner(d.Logger, d.Transactions, d.Payouts).
		WithMetrics(d.Metrics).
		WithTracer(d.Tracing.Tracer(service.TracerName))

	if d.Config.Run.LockFile != "" {
		d.Lock = lock.New(d.Config.Run.LockFile)
		d.Runner.WithLocker(d.Lock)
	}
}

func layoutFor(p config.PipelineConfig) storage.Layout {
	return storage.Layout{
		BaseDir:      p.Dir,
		NewDir:       p.NewDir(),
		ProcessedDir: p.ProcessedDir(),
	}
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/lexoffice"
	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/parser"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/logger"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/storage"
)

// PayoutPipeline books Shopify payout reports. Invalid rows are skipped but
// every report is archived once its rows were read.
type PayoutPipeline struct {
	store      storage.Storage
	parser     *parser.PayoutParser
	writeEmpty bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewPayoutPipeline creates a payout pipeline. By default no output CSV is
// written when no payout was booked.
func NewPayoutPipeline(store storage.Storage, logger *slog.Logger) *PayoutPipeline {
	return &PayoutPipeline{
		store:  store,
		parser: parser.NewPayoutParser(),
		now:    time.Now,
		logger: logger,
	}
}

// WithWriteEmpty sets whether a header-only CSV is written when nothing was booked.
func (p *PayoutPipeline) WithWriteEmpty(writeEmpty bool) *PayoutPipeline {
	p.writeEmpty = writeEmpty
	return p
}

// WithClock overrides the clock used to name the output file.
func (p *PayoutPipeline) WithClock(now func() time.Time) *PayoutPipeline {
	p.now = now
	return p
}

// Name implements Pipeline.
func (p *PayoutPipeline) Name() string { return "payouts" }

// Process books every payout report in new/.
func (p *PayoutPipeline) Process(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx, p.logger).With(slog.String("pipeline", p.Name()))
	result := &Result{Pipeline: p.Name()}

	files, err := p.store.List(ctx, ".csv")
	if err != nil {
		return result, err
	}
	result.FilesSeen = len(files)

	records := make([]lexoffice.PayoutRecord, 0, len(files))

	for _, file := range files {
		parsed, err := p.parseFile(ctx, file)
		if err != nil {
			return result, err
		}

		for _, perr := range parsed.Errors {
			log.Error("could not find all data for payout row, skipping it", perr.LogAttrs()...)
		}
		result.Skipped = append(result.Skipped, parsed.Errors...)

		for _, payout := range parsed.Payouts {
			records = append(records, lexoffice.NewPayoutRecord(payout.Amount.Format(","), payout.Date))
		}

		if err := p.store.Archive(ctx, file); err != nil {
			return result, err
		}
		result.FilesArchived++

		log.Debug("payout report processed",
			slog.String("file", file.Name),
			slog.Int("rows", parsed.TotalRows),
			slog.Int("booked", len(parsed.Payouts)),
		)
	}

	result.Records = len(records)

	if len(records) == 0 && !p.writeEmpty {
		log.Info("no payouts booked, skipping output")
		return result, nil
	}

	path, err := writeCSV(ctx, p.store, OutputName(p.now(), PayoutsSuffix), records)
	if err != nil {
		return result, err
	}
	result.OutputPath = path

	return result, nil
}

func (p *PayoutPipeline) parseFile(ctx context.Context, file *storage.FileInfo) (*parser.PayoutResult, error) {
	rc, err := p.store.Open(ctx, file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return p.parser.Parse(file.Path, rc)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/lexoffice"
	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/extractor"
	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/parser"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/logger"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/storage"
)

// TransactionPipeline books Shopify Payments invoice PDFs. An invoice with
// missing data is skipped and stays in new/; its PDF is not archived.
type TransactionPipeline struct {
	store      storage.Storage
	extractor  extractor.TextExtractor
	writeEmpty bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewTransactionPipeline creates a transaction pipeline. By default the
// output CSV is written even when no invoice was booked.
func NewTransactionPipeline(store storage.Storage, ex extractor.TextExtractor, logger *slog.Logger) *TransactionPipeline {
	return &TransactionPipeline{
		store:      store,
		extractor:  ex,
		writeEmpty: true,
		now:        time.Now,
		logger:     logger,
	}
}

// WithWriteEmpty sets whether a header-only CSV is written when nothing was booked.
func (p *TransactionPipeline) WithWriteEmpty(writeEmpty bool) *TransactionPipeline {
	p.writeEmpty = writeEmpty
	return p
}

// WithClock overrides the clock used to name the output file.
func (p *TransactionPipeline) WithClock(now func() time.Time) *TransactionPipeline {
	p.now = now
	return p
}

// Name implements Pipeline.
func (p *TransactionPipeline) Name() string { return "transactions" }

// Process books every invoice PDF in new/.
func (p *TransactionPipeline) Process(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx, p.logger).With(slog.String("pipeline", p.Name()))
	result := &Result{Pipeline: p.Name()}

	files, err := p.store.List(ctx, ".pdf")
	if err != nil {
		return result, err
	}
	result.FilesSeen = len(files)

	records := make([]lexoffice.TransactionRecord, 0, len(files))

	for _, file := range files {
		text, err := p.extractor.ExtractText(ctx, file.Path)
		if err != nil {
			return result, fmt.Errorf("failed to extract text: %w", err)
		}

		invoice, perr := parser.ParseInvoice(file.Path, text)
		if perr != nil {
			log.Error("could not find all data for invoice, leaving it in place", perr.LogAttrs()...)
			result.Skipped = append(result.Skipped, *perr)
			result.FilesLeft++
			continue
		}

		records = append(records, lexoffice.NewTransactionRecord(invoice.Amount, invoice.Description, invoice.Issued))

		if err := p.store.Archive(ctx, file); err != nil {
			return result, err
		}
		result.FilesArchived++

		log.Debug("invoice booked",
			slog.String("file", file.Name),
			slog.String("amount", invoice.Amount),
			slog.String("description", invoice.Description),
		)
	}

	result.Records = len(records)

	if len(records) == 0 && !p.writeEmpty {
		log.Info("no invoices booked, skipping output")
		return result, nil
	}

	path, err := writeCSV(ctx, p.store, OutputName(p.now(), TransactionsSuffix), records)
	if err != nil {
		return result, err
	}
	result.OutputPath = path

	return result, nil
}

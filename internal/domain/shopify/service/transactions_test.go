package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/extractor"
	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/parser"
)

const transactionsHeader = "Betrag,Auftraggeber / Empfänger,Verwendungszweck,Datum\n"

func TestTransactionPipeline_Process(t *testing.T) {
	t.Run("books two invoices in enumeration order", func(t *testing.T) {
		store, layout := newStore(t, "transactions")
		put(t, layout.NewDir, "2024-01.pdf", "%PDF")
		put(t, layout.NewDir, "2024-02.pdf", "%PDF")
		put(t, layout.NewDir, "readme.txt", "ignored")

		ex := fakeExtractor(map[string]string{
			"2024-01.pdf": invoiceText("12.00 EUR 45.99", "Jan 2024", "January 5, 2024"),
			"2024-02.pdf": invoiceText("3.10", "Feb 2024", "February 12, 2024"),
		})

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, ex, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, res.FilesSeen)
		assert.Equal(t, 2, res.FilesArchived)
		assert.Zero(t, res.FilesLeft)
		assert.Equal(t, 2, res.Records)
		assert.Equal(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-transactions.csv"), res.OutputPath)

		assert.Equal(t, transactionsHeader+
			"-45.99,Shopify Payments,Jan 2024,05.01.2024\n"+
			"-3.10,Shopify Payments,Feb 2024,12.02.2024\n",
			readFile(t, res.OutputPath))

		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "2024-01.pdf"))
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "2024-02.pdf"))
		assert.NoFileExists(t, filepath.Join(layout.NewDir, "2024-01.pdf"))
		assert.FileExists(t, filepath.Join(layout.NewDir, "readme.txt"))
	})

	t.Run("invoice without reference stays in new", func(t *testing.T) {
		store, layout := newStore(t, "transactions")
		put(t, layout.NewDir, "a.pdf", "%PDF")
		put(t, layout.NewDir, "b.pdf", "%PDF")

		ex := fakeExtractor(map[string]string{
			"a.pdf": "Amount (EUR) 12.00 EUR 45.99\nShopify Payments Invoice for Jan 2024\n",
			"b.pdf": invoiceText("9.99", "Feb 2024", "February 1, 2024"),
		})

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, ex, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, res.Records)
		assert.Equal(t, 1, res.FilesLeft)
		require.Len(t, res.Skipped, 1)
		assert.True(t, errors.Is(res.Skipped[0], parser.ErrMissingField))

		assert.FileExists(t, filepath.Join(layout.NewDir, "a.pdf"))
		assert.NoFileExists(t, filepath.Join(layout.ProcessedDir, "a.pdf"))
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "b.pdf"))

		assert.Equal(t, transactionsHeader+"-9.99,Shopify Payments,Feb 2024,01.02.2024\n", readFile(t, res.OutputPath))
		assert.Contains(t, logs.String(), "could not find all data for invoice")
		assert.Contains(t, logs.String(), "a.pdf")
	})

	t.Run("no invoices still writes the header", func(t *testing.T) {
		store, _ := newStore(t, "transactions")

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, fakeExtractor(nil), testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Zero(t, res.FilesSeen)
		require.NotEmpty(t, res.OutputPath)
		assert.Equal(t, transactionsHeader, readFile(t, res.OutputPath))
	})

	t.Run("write empty disabled", func(t *testing.T) {
		store, layout := newStore(t, "transactions")

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, fakeExtractor(nil), testLogger(&logs)).
			WithClock(fixedClock).
			WithWriteEmpty(false).
			Process(context.Background())
		require.NoError(t, err)

		assert.Empty(t, res.OutputPath)
		assert.NoFileExists(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-transactions.csv"))
	})

	t.Run("extractor failure aborts without rollback", func(t *testing.T) {
		store, layout := newStore(t, "transactions")
		put(t, layout.NewDir, "a.pdf", "%PDF")
		put(t, layout.NewDir, "b.pdf", "%PDF")

		ex := extractor.Func(func(ctx context.Context, path string) (string, error) {
			if filepath.Base(path) == "b.pdf" {
				return "", errors.New("pdftotext: exit status 1")
			}
			return invoiceText("1.00", "Jan 2024", "January 1, 2024"), nil
		})

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, ex, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to extract text")

		assert.Equal(t, 1, res.FilesArchived)
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "a.pdf"))
		assert.FileExists(t, filepath.Join(layout.NewDir, "b.pdf"))
		assert.NoFileExists(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-transactions.csv"))
	})

	t.Run("overwrites an earlier output of the same day", func(t *testing.T) {
		store, layout := newStore(t, "transactions")
		put(t, layout.BaseDir, "2024-02-03-shopify-transactions.csv", "stale content from an earlier run\nthat was longer\n")

		var logs bytes.Buffer
		res, err := NewTransactionPipeline(store, fakeExtractor(nil), testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, transactionsHeader, readFile(t, res.OutputPath))
	})
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "2024-02-03-shopify-payouts.csv", OutputName(fixedNow, PayoutsSuffix))
	assert.Equal(t, "2024-02-03-shopify-transactions.csv", OutputName(fixedNow, TransactionsSuffix))
}

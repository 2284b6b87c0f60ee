package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/storage"
)

// Output file suffixes.
const (
	TransactionsSuffix = "shopify-transactions"
	PayoutsSuffix      = "shopify-payouts"
)

// OutputName returns the dated output file name, e.g. 2024-01-05-shopify-payouts.csv.
func OutputName(now time.Time, suffix string) string {
	return now.Format("2006-01-02") + "-" + suffix + ".csv"
}

// writeCSV writes the header (from the csv struct tags) and all records to
// a new file in the pipeline base directory and returns its path.
func writeCSV[T any](ctx context.Context, store storage.Storage, name string, records []T) (string, error) {
	w, path, err := store.Create(ctx, name)
	if err != nil {
		return "", err
	}

	if err := gocsv.Marshal(records, w); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/extractor"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/storage"
)

var fixedNow = time.Date(2024, time.February, 3, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newStore(t *testing.T, name string) (*storage.LocalStorage, storage.Layout) {
	t.Helper()
	base := filepath.Join(t.TempDir(), name)
	layout := storage.Layout{
		BaseDir:      base,
		NewDir:       filepath.Join(base, "new"),
		ProcessedDir: filepath.Join(base, "processed"),
	}
	s, err := storage.NewLocalStorage(layout)
	require.NoError(t, err)
	return s, layout
}

func put(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// fakeExtractor serves invoice text keyed by file name; the PDFs on disk are
// placeholders.
func fakeExtractor(texts map[string]string) extractor.TextExtractor {
	return extractor.Func(func(ctx context.Context, path string) (string, error) {
		text, ok := texts[filepath.Base(path)]
		if !ok {
			return "", fmt.Errorf("no fixture for %s", path)
		}
		return text, nil
	})
}

func invoiceText(amountLine, period, issued string) string {
	return "Shopify International Limited\n" +
		"Invoice Reference #1234 - Issued " + issued + "\n" +
		"Shopify Payments Invoice for " + period + "\n" +
		"Amount (EUR) " + amountLine + "\n"
}

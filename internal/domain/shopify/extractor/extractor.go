// Package extractor turns PDF files into plain text.
package extractor

import (
	"context"
	"fmt"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/config"
)

// TextExtractor returns the full text of the PDF at path.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Func adapts a plain function to TextExtractor.
type Func func(ctx context.Context, path string) (string, error)

// ExtractText calls f.
func (f Func) ExtractText(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// New returns the extractor selected in cfg.
func New(cfg config.PDFConfig) (TextExtractor, error) {
	switch cfg.Extractor {
	case config.ExtractorPDFToText:
		return NewPDFToText(cfg.PDFToTextPath), nil
	case config.ExtractorNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown PDF extractor %q", cfg.Extractor)
	}
}

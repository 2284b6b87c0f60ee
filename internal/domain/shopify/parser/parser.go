// Package parser extracts bookable values from Shopify exports: payout CSV
// reports (via gocsv) and the text of Shopify Payments invoice PDFs.
package parser

import (
	"fmt"
	"log/slog"
	"strings"
)

// RawValue is a field as it was found in the source, kept for diagnostics.
type RawValue struct {
	Name  string
	Value string
}

// ParseError represents a missing or malformed field in one payout row or
// one invoice. The unit it describes is skipped; the batch continues.
type ParseError struct {
	File string
	Row  int // 0 for invoice (file level) errors
	Err  error
	Raw  []RawValue
}

func (e ParseError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "%s row %d: %v", e.File, e.Row, e.Err)
	} else {
		fmt.Fprintf(&b, "%s: %v", e.File, e.Err)
	}
	for _, r := range e.Raw {
		fmt.Fprintf(&b, " %s=%q", r.Name, r.Value)
	}
	return b.String()
}

func (e ParseError) Unwrap() error { return e.Err }

// LogAttrs returns the error as slog attributes.
func (e ParseError) LogAttrs() []any {
	attrs := []any{slog.String("file", e.File)}
	if e.Row > 0 {
		attrs = append(attrs, slog.Int("row", e.Row))
	}
	attrs = append(attrs, slog.Any("error", e.Err))
	raw := make([]any, 0, len(e.Raw))
	for _, r := range e.Raw {
		raw = append(raw, slog.String(r.Name, r.Value))
	}
	return append(attrs, slog.Group("raw", raw...))
}

// Package service orchestrates the Shopify export pipelines: enumerate the
// incoming files, extract records, archive and write the Lexoffice CSV.
package service

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/parser"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/metrics"
)

// Pipeline is one independent export pipeline.
type Pipeline interface {
	Name() string
	Process(ctx context.Context) (*Result, error)
}

// Result summarizes one pipeline run.
type Result struct {
	Pipeline      string
	FilesSeen     int
	FilesArchived int
	FilesLeft     int // left in new/ for manual inspection
	Records       int
	OutputPath    string // empty when no output was written
	Skipped       []parser.ParseError
}

// Stats converts the result for the metrics recorder.
func (r *Result) Stats() metrics.PipelineStats {
	return metrics.PipelineStats{
		FilesSeen:     r.FilesSeen,
		FilesArchived: r.FilesArchived,
		FilesLeft:     r.FilesLeft,
		RowsSkipped:   len(r.Skipped),
		Records:       r.Records,
		OutputWritten: r.OutputPath != "",
	}
}

// LogValue implements slog.LogValuer.
func (r *Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pipeline", r.Pipeline),
		slog.Int("files_seen", r.FilesSeen),
		slog.Int("files_archived", r.FilesArchived),
		slog.Int("files_left", r.FilesLeft),
		slog.Int("skipped", len(r.Skipped)),
		slog.Int("records", r.Records),
		slog.String("output", r.OutputPath),
	)
}

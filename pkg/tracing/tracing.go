// Package tracing installs an OpenTelemetry tracer provider that writes
// finished spans as JSON lines to a file.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider hands out tracers. The zero-config provider (empty path) is a
// no-op.
type Provider struct {
	tp   *sdktrace.TracerProvider
	file *os.File
}

// New creates a provider appending spans to path. An empty path disables
// tracing.
func New(path string) (*Provider, error) {
	if path == "" {
		return &Provider{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create traces directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open traces file: %w", err)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	// Runs are short; export synchronously so nothing is lost on exit.
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	return &Provider{tp: tp, file: f}, nil
}

// Tracer returns a named tracer.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p == nil || p.tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans and closes the file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return errors.Join(p.tp.Shutdown(ctx), p.file.Close())
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/logger"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/metrics"
)

// TracerName names the tracer of the export runner.
const TracerName = "github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/service"

// Locker guards a run against overlapping invocations.
type Locker interface {
	Acquire() error
	Release() error
}

// FatalError wraps a fault that aborted a run. Stack is set when the fault
// was a panic.
type FatalError struct {
	Pipeline string
	Err      error
	Stack    []byte
}

func (e *FatalError) Error() string {
	if e.Pipeline == "" {
		return fmt.Sprintf("export run aborted: %v", e.Err)
	}
	return fmt.Sprintf("export run aborted in %s pipeline: %v", e.Pipeline, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Runner runs the pipelines in order inside a single failure boundary.
// Work done before a fault (archived files, written CSVs) is kept.
type Runner struct {
	pipelines []Pipeline
	locker    Locker
	metrics   *metrics.Recorder
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewRunner creates a runner for the given pipelines.
func NewRunner(logger *slog.Logger, pipelines ...Pipeline) *Runner {
	return &Runner{
		pipelines: pipelines,
		tracer:    otel.Tracer(TracerName),
		logger:    logger,
	}
}

// WithLocker sets a lock acquired for the duration of each run.
func (r *Runner) WithLocker(l Locker) *Runner {
	r.locker = l
	return r
}

// WithTracer replaces the tracer taken from the global provider.
func (r *Runner) WithTracer(t trace.Tracer) *Runner {
	r.tracer = t
	return r
}

// WithMetrics sets the recorder flushed after each run.
func (r *Runner) WithMetrics(m *metrics.Recorder) *Runner {
	r.metrics = m
	return r
}

// Run executes all pipelines. The first fault aborts the remaining work and
// is returned as a *FatalError; a held lock is returned as is.
func (r *Runner) Run(ctx context.Context) (results []*Result, err error) {
	runID := uuid.New()
	log := r.logger.With(slog.String("run_id", runID.String()))
	ctx = logger.WithLogger(ctx, log)

	ctx, span := r.tracer.Start(ctx, "export.run", trace.WithAttributes(attribute.String("run_id", runID.String())))
	defer span.End()

	if r.locker != nil {
		if err := r.locker.Acquire(); err != nil {
			return nil, err
		}
		defer func() {
			if rerr := r.locker.Release(); rerr != nil {
				log.Error("failed to release run lock", slog.Any("error", rerr))
			}
		}()
	}

	started := time.Now()
	log.Info("export run started", slog.Int("pipelines", len(r.pipelines)))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		r.metrics.ObserveRun(err, started, time.Now())
		if ferr := r.metrics.Flush(); ferr != nil {
			log.Warn("failed to write metrics", slog.Any("error", ferr))
		}
	}()

	for _, p := range r.pipelines {
		res, perr := r.runPipeline(ctx, p)
		if res != nil {
			results = append(results, res)
			r.metrics.ObservePipeline(p.Name(), res.Stats())
		}
		if perr != nil {
			return results, perr
		}
		log.Info("pipeline completed", slog.Any("result", res))
	}

	log.Info("export run completed", slog.Duration("duration", time.Since(started)))
	return results, nil
}

func (r *Runner) runPipeline(ctx context.Context, p Pipeline) (res *Result, err error) {
	ctx, span := r.tracer.Start(ctx, "pipeline."+p.Name())
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			perr, ok := rec.(error)
			if !ok {
				perr = fmt.Errorf("panic: %v", rec)
			}
			err = &FatalError{Pipeline: p.Name(), Err: perr, Stack: debug.Stack()}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	res, err = p.Process(ctx)
	if res != nil {
		span.SetAttributes(
			attribute.Int("files_seen", res.FilesSeen),
			attribute.Int("files_archived", res.FilesArchived),
			attribute.Int("records", res.Records),
		)
	}
	if err != nil {
		var fatal *FatalError
		if !errors.As(err, &fatal) {
			err = &FatalError{Pipeline: p.Name(), Err: err}
		}
	}
	return res, err
}

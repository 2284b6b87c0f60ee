// Command export converts Shopify invoice PDFs and payout reports from the
// export directories into CSV files for the Lexoffice bank import.
//
// Without SCHEDULE it performs one run and exits with 0 on success, 1 on a
// fatal error and 2 when another run holds the lock. With SCHEDULE set it
// keeps running and exports on every cron tick.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/shopify-lexoffice-export/internal/domain/shopify/service"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/config"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/cron"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/lock"
	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/logger"
)

// Exit codes.
const (
	exitOK     = 0
	exitFatal  = 1
	exitLocked = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// run reads ./.env (when present) and the environment; the command takes
// no arguments.
func run(ctx context.Context, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitFatal
	}

	log := logger.New(stderr, cfg.Log.Level, cfg.Log.AppEnv)
	slog.SetDefault(log)

	deps, err := InitDependencies(cfg, log)
	if err != nil {
		log.Error("failed to initialize", slog.Any("error", err))
		return exitFatal
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			log.Warn("failed to flush traces", slog.Any("error", err))
		}
	}()

	if cfg.Run.Schedule == "" {
		_, err := deps.Runner.Run(ctx)
		return exitCode(err, log, stderr)
	}

	return runScheduled(ctx, deps, log, stderr)
}

func runScheduled(ctx context.Context, deps *Dependencies, log *slog.Logger, stderr io.Writer) int {
	scheduler := cron.NewScheduler(deps.Config.Run.Schedule, scheduledJob(deps.Runner, stderr), log).
		WithTimeout(deps.Config.Run.Timeout)
	if err := scheduler.Start(ctx); err != nil {
		log.Error("failed to start scheduler", slog.Any("error", err))
		return exitFatal
	}
	log.Info("waiting for next run", slog.Time("next", scheduler.Next()))

	<-ctx.Done()

	log.Info("shutdown signal received")
	<-scheduler.Stop().Done()
	return exitOK
}

// exitCode maps a run error to the process exit code and dumps fatal
// diagnostics to stderr.
func exitCode(err error, log *slog.Logger, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	if errors.Is(err, lock.ErrLocked) {
		log.Warn("export run skipped", slog.Any("error", err))
		return exitLocked
	}

	log.Error("export run failed", slog.Any("error", err))
	dumpFatal(stderr, err)
	return exitFatal
}

// scheduledJob runs the export on each tick. The scheduler logs the outcome;
// fatal diagnostics go to stderr as in a single run.
func scheduledJob(runner *service.Runner, stderr io.Writer) cron.Job {
	return func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		if err != nil && !errors.Is(err, lock.ErrLocked) {
			dumpFatal(stderr, err)
		}
		return err
	}
}

// dumpFatal writes the error and, for panics, the goroutine stack.
func dumpFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "fatal: %v\n", err)
	var fatal *service.FatalError
	if errors.As(err, &fatal) && len(fatal.Stack) > 0 {
		fmt.Fprintf(w, "%s\n", fatal.Stack)
	}
}

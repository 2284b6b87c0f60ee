package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Extractor kinds for PDF_EXTRACTOR.
const (
	ExtractorPDFToText = "pdftotext"
	ExtractorNative    = "native"
)

// Config holds all application configuration
type Config struct {
	BaseDir      string `env:"EXPORT_BASE_DIR" envDefault:"./var"`
	Transactions PipelineConfig
	Payouts      PipelineConfig
	PDF          PDFConfig
	Log          LogConfig
	Run          RunConfig
}

// PipelineConfig holds the directory layout and output policy of one pipeline.
// Dir is the base directory; incoming files live in Dir/new and are archived
// to Dir/processed.
type PipelineConfig struct {
	Dir        string
	WriteEmpty bool
}

// NewDir returns the incoming directory.
func (p PipelineConfig) NewDir() string { return filepath.Join(p.Dir, "new") }

// ProcessedDir returns the archive directory.
func (p PipelineConfig) ProcessedDir() string { return filepath.Join(p.Dir, "processed") }

type PDFConfig struct {
	Extractor     string `env:"PDF_EXTRACTOR" envDefault:"pdftotext"`
	PDFToTextPath string `env:"PDFTOTEXT_PATH" envDefault:"pdftotext"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv string `env:"APP_ENV" envDefault:"production"`
}

type RunConfig struct {
	LockFile        string        `env:"LOCK_FILE"`
	Schedule        string        `env:"SCHEDULE"`
	MetricsTextfile string        `env:"METRICS_TEXTFILE"`
	TracesFile      string        `env:"TRACES_FILE"`
	Timeout         time.Duration `env:"RUN_TIMEOUT" envDefault:"30m"`
}

// raw mirrors the environment one-to-one; pipeline directories default to
// subdirectories of BaseDir so they are resolved after parsing.
type raw struct {
	Config
	TransactionsDir        string `env:"TRANSACTIONS_DIR"`
	PayoutsDir             string `env:"PAYOUTS_DIR"`
	TransactionsWriteEmpty bool   `env:"TRANSACTIONS_WRITE_EMPTY" envDefault:"true"`
	PayoutsWriteEmpty      bool   `env:"PAYOUTS_WRITE_EMPTY" envDefault:"false"`
}

// Load reads configuration from .env files (when present) and the environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: read %s: %w", f, err)
		}
	}

	r, err := env.ParseAs[raw]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := r.Config
	cfg.Transactions = PipelineConfig{
		Dir:        firstNonEmpty(r.TransactionsDir, filepath.Join(cfg.BaseDir, "transactions")),
		WriteEmpty: r.TransactionsWriteEmpty,
	}
	cfg.Payouts = PipelineConfig{
		Dir:        firstNonEmpty(r.PayoutsDir, filepath.Join(cfg.BaseDir, "payouts")),
		WriteEmpty: r.PayoutsWriteEmpty,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	switch c.PDF.Extractor {
	case ExtractorPDFToText:
		if c.PDF.PDFToTextPath == "" {
			return errors.New("PDFTOTEXT_PATH is required for the pdftotext extractor")
		}
	case ExtractorNative:
	default:
		return fmt.Errorf("PDF_EXTRACTOR must be %q or %q, got %q", ExtractorPDFToText, ExtractorNative, c.PDF.Extractor)
	}

	if c.Transactions.Dir == "" || c.Payouts.Dir == "" {
		return errors.New("pipeline directories must not be empty")
	}

	if c.Run.Timeout <= 0 {
		return fmt.Errorf("RUN_TIMEOUT must be positive, got %s", c.Run.Timeout)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

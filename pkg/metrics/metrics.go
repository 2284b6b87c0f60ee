// Package metrics records export run statistics in a private Prometheus
// registry and writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shopify_export"

// PipelineStats summarizes one pipeline run.
type PipelineStats struct {
	FilesSeen     int
	FilesArchived int
	FilesLeft     int
	RowsSkipped   int
	Records       int
	OutputWritten bool
}

// Recorder collects run metrics. A nil *Recorder ignores all calls.
type Recorder struct {
	registry *prometheus.Registry
	path     string

	runs        *prometheus.CounterVec
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
	duration    prometheus.Gauge
	files       *prometheus.GaugeVec
	rowsSkipped *prometheus.GaugeVec
	records     *prometheus.GaugeVec
	output      *prometheus.GaugeVec
}

// New creates a recorder. When textfilePath is empty Flush is a no-op.
func New(textfilePath string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		path:     textfilePath,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Export runs by result.",
		}, []string{"result"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed without a fatal error.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		files: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_files",
			Help:      "Input files of the last run by pipeline and state.",
		}, []string{"pipeline", "state"}),
		rowsSkipped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_skipped_units",
			Help:      "Rows or files skipped for missing data in the last run.",
		}, []string{"pipeline"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records written to the output CSV in the last run.",
		}, []string{"pipeline"}),
		output: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_output_written",
			Help:      "1 if the pipeline wrote an output CSV in the last run.",
		}, []string{"pipeline"}),
	}

	r.registry.MustRegister(r.runs, r.lastRun, r.lastSuccess, r.duration,
		r.files, r.rowsSkipped, r.records, r.output)

	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObservePipeline records the statistics of one pipeline.
func (r *Recorder) ObservePipeline(pipeline string, s PipelineStats) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(pipeline, "seen").Set(float64(s.FilesSeen))
	r.files.WithLabelValues(pipeline, "archived").Set(float64(s.FilesArchived))
	r.files.WithLabelValues(pipeline, "left").Set(float64(s.FilesLeft))
	r.rowsSkipped.WithLabelValues(pipeline).Set(float64(s.RowsSkipped))
	r.records.WithLabelValues(pipeline).Set(float64(s.Records))
	r.output.WithLabelValues(pipeline).Set(boolToFloat(s.OutputWritten))
}

// ObserveRun records the outcome of a whole run.
func (r *Recorder) ObserveRun(err error, started time.Time, finished time.Time) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.runs.WithLabelValues(result).Inc()
	r.lastRun.Set(float64(finished.Unix()))
	r.lastSuccess.Set(boolToFloat(err == nil))
	r.duration.Set(finished.Sub(started).Seconds())
}

// Flush writes all metrics to the textfile path, atomically.
func (r *Recorder) Flush() error {
	if r == nil || r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

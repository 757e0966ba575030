package metrics

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/types"
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "stackops"

// Recorder collects stage and run metrics and, when Textfile is set, writes
// them after every run for the node_exporter textfile collector
type Recorder struct {
	registry *prom.Registry
	textfile string

	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	lastRunTime   prom.Gauge
	lastRunOK     prom.Gauge
}

// NewRecorder constructs and registers the metrics on reg. A nil reg gets a
// private registry.
func NewRecorder(reg *prom.Registry, textfile string) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		registry: reg,
		textfile: textfile,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual setup stages",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total setup run duration",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 2400},
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Setup runs by final status",
		}, []string{"outcome"}),
		lastRunTime: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last setup run finished",
		}),
		lastRunOK: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last setup run succeeded, 0 otherwise",
		}),
	}
	reg.MustRegister(r.stageDuration, r.stageResults, r.runDuration, r.runOutcome, r.lastRunTime, r.lastRunOK)
	return r
}

// Registry returns the registry the metrics live in
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// RunStarted is a no-op
func (r *Recorder) RunStarted(*types.RunReport) error {
	return nil
}

// StageFinished records the stage outcome and, unless skipped, its duration
func (r *Recorder) StageFinished(_ string, result types.ExecutionResult) error {
	r.stageResults.WithLabelValues(result.Stage, result.Outcome()).Inc()
	if !result.Skipped {
		r.stageDuration.WithLabelValues(result.Stage).Observe(result.Duration.Seconds())
	}
	return nil
}

// RunFinished records the run outcome and writes the textfile
func (r *Recorder) RunFinished(report *types.RunReport) error {
	r.runOutcome.WithLabelValues(report.Status()).Inc()
	r.runDuration.Observe(report.Duration().Seconds())
	r.lastRunTime.Set(float64(report.FinishedAt.Unix()))
	if report.Succeeded() {
		r.lastRunOK.Set(1)
	} else {
		r.lastRunOK.Set(0)
	}

	if r.textfile == "" {
		return nil
	}
	return r.WriteTextfile(r.textfile)
}

// WriteTextfile atomically writes the registry in text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "create metrics directory for %s", path)
	}
	if err := prom.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "write metrics textfile %s", path).
			WithDetail("path", path)
	}
	return nil
}

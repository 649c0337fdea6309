// Package metrics records per-run pipeline counters on a private Prometheus
// registry and dumps them in text exposition format at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "note2tex"

// Section outcome labels.
const (
	StatusPassed   = "passed"
	StatusResidual = "residual"
	StatusFailed   = "failed"
)

// Recorder owns the run's metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	sections        *prometheus.CounterVec
	refineAttempts  *prometheus.CounterVec
	degenerate      prometheus.Counter
	issues          *prometheus.CounterVec
	stylist         *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
}

// New builds a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		sections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "sections_total",
			Help:      "Sections processed, by final status",
		}, []string{"status"}),
		refineAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "refine_attempts_total",
			Help:      "Refinement attempts, by section",
		}, []string{"section"}),
		degenerate: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "degenerate_refinements_total",
			Help:      "Refinements discarded for being too short",
		}),
		issues: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validate",
			Name:      "issues_total",
			Help:      "Validation issues observed, by kind",
		}, []string{"kind"}),
		stylist: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stylist",
			Name:      "runs_total",
			Help:      "Style passes, by source of the final body",
		}, []string{"source"}),
		sectionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "section_duration_seconds",
			Help:      "Wall time spent per section",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"section"}),
	}
}

func (r *Recorder) Section(status string) {
	if r == nil {
		return
	}
	r.sections.WithLabelValues(status).Inc()
}

func (r *Recorder) RefineAttempt(section string) {
	if r == nil {
		return
	}
	r.refineAttempts.WithLabelValues(section).Inc()
}

func (r *Recorder) DegenerateRefinement() {
	if r == nil {
		return
	}
	r.degenerate.Inc()
}

func (r *Recorder) Issue(kind string) {
	if r == nil {
		return
	}
	r.issues.WithLabelValues(kind).Inc()
}

func (r *Recorder) Stylist(source string) {
	if r == nil {
		return
	}
	r.stylist.WithLabelValues(source).Inc()
}

func (r *Recorder) SectionDuration(section string, d time.Duration) {
	if r == nil {
		return
	}
	r.sectionDuration.WithLabelValues(section).Observe(d.Seconds())
}

// Registry exposes the underlying registry, e.g. for Gather in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes the current values atomically to path in the text
// exposition format used by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

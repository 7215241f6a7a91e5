package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/md-check-link/internal/progress"
)

// PrometheusSink exports link checking metrics via Prometheus.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runDuration   prometheus.Histogram
	deadLinks     prometheus.Gauge

	linkChecks     *prometheus.CounterVec
	linkRetries    prometheus.Counter
	linkDuration   *prometheus.HistogramVec
	linkOccurrence prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdcheck_runs_started_total",
			Help: "Total checking runs that have started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdcheck_runs_completed_total",
			Help: "Total checking runs that have completed.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mdcheck_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		deadLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mdcheck_dead_links",
			Help: "Dead link entries found by the most recent run.",
		}),
		linkChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdcheck_link_checks_total",
			Help: "Remote link resolutions partitioned by verdict and status class.",
		}, []string{"verdict", "status_class"}),
		linkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdcheck_link_retries_total",
			Help: "HEAD probes repeated after a 429 response.",
		}),
		linkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdcheck_link_duration_seconds",
			Help:    "Remote resolution duration partitioned by verdict.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"verdict"}),
		linkOccurrence: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdcheck_link_occurrences_total",
			Help: "Link entries that received a verdict from a remote resolution.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.deadLinks,
		s.linkChecks,
		s.linkRetries,
		s.linkDuration,
		s.linkOccurrence,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsCompleted.Inc()
		s.deadLinks.Set(float64(evt.Dead))
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageLinkResolved:
		s.handleLinkEvent(evt)
	}
}

func (s *PrometheusSink) handleLinkEvent(evt progress.Event) {
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	s.linkChecks.WithLabelValues(evt.Verdict, statusClass).Inc()
	if evt.Attempts > 1 {
		s.linkRetries.Add(float64(evt.Attempts - 1))
	}
	if evt.Occurrences > 0 {
		s.linkOccurrence.Add(float64(evt.Occurrences))
	}
	if evt.Dur > 0 {
		s.linkDuration.WithLabelValues(evt.Verdict).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

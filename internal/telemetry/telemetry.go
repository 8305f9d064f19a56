// Package telemetry exposes process-wide counters for the research
// pipeline. Scraped via the /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	OutcomeFinished  = "finished"
	OutcomeExhausted = "exhausted"
	OutcomeAborted   = "aborted"
)

var (
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scour_runs_started_total",
		Help: "Research runs started.",
	})
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scour_runs_completed_total",
		Help: "Research runs completed, by terminal outcome.",
	}, []string{"outcome"})
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scour_searches_total",
		Help: "Web searches issued.",
	})
	Fetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scour_fetches_total",
		Help: "Page fetch pipeline invocations.",
	})
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scour_fetch_failures_total",
		Help: "Fetch pipeline invocations that yielded no text.",
	})
	ReportsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scour_reports_written_total",
		Help: "Report artifacts successfully written.",
	})
)

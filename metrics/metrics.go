// Package metrics defines the prometheus instrumentation the pipeline
// and extractor emit (spec §1 AMBIENT STACK expansion), grounded on
// the promauto.NewCounterVec/NewHistogramVec style used throughout
// libindex/metrics.go and datastore/postgres/store_metrics.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ComponentsGenerated counts successfully finalized components,
	// labeled by (suite, section, arch).
	ComponentsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asgen",
		Subsystem: "pipeline",
		Name:      "components_generated_total",
		Help:      "Number of components written to the catalog.",
	}, []string{"suite", "section", "arch"})

	// PackagesProcessed counts packages run through the extractor,
	// labeled by (suite, section, arch, outcome) where outcome is one
	// of "generated", "ignored", "seen", "skipped", "error".
	PackagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asgen",
		Subsystem: "pipeline",
		Name:      "packages_processed_total",
		Help:      "Number of packages the extractor ran against, by outcome.",
	}, []string{"suite", "section", "arch", "outcome"})

	// HintsEmitted counts hints raised, labeled by severity.
	HintsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asgen",
		Subsystem: "pipeline",
		Name:      "hints_emitted_total",
		Help:      "Number of hints recorded, by severity.",
	}, []string{"severity"})

	// ExtractionDuration observes per-package extraction wall time.
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "asgen",
		Subsystem: "extractor",
		Name:      "extract_duration_seconds",
		Help:      "Wall-clock time to run the extractor against one package.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"suite", "section", "arch"})

	// WorkerPoolOccupancy tracks in-flight extractor workers.
	WorkerPoolOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "asgen",
		Subsystem: "pipeline",
		Name:      "worker_pool_occupancy",
		Help:      "Number of extractor workers currently running.",
	})
)

package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compilations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume_builder",
		Subsystem: "latex",
		Name:      "compilations_total",
		Help:      "LaTeX compilations by outcome.",
	}, []string{"outcome"})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "resume_builder",
		Subsystem: "latex",
		Name:      "compile_duration_seconds",
		Help:      "Wall time of pdflatex runs.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
	})

	conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume_builder",
		Subsystem: "pandoc",
		Name:      "conversions_total",
		Help:      "Pandoc conversions by direction and outcome.",
	}, []string{"direction", "outcome"})
)

const (
	outcomeOK          = "ok"
	outcomeFailed      = "failed"
	outcomeTimeout     = "timeout"
	outcomePlaceholder = "placeholder"
	outcomeUnavailable = "unavailable"
)

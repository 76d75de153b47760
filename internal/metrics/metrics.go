// Package metrics provides the centralized Prometheus registry for the
// evaluation pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pickpulse",
		Name:      "evaluation_runs_total",
		Help:      "Total number of evaluation pipeline runs by outcome",
	}, []string{"status"})
	PicksProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pickpulse",
		Name:      "picks_processed_total",
		Help:      "Total number of locked picks processed",
	})
	GateVerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pickpulse",
		Name:      "gate_verdicts_total",
		Help:      "Total number of promotion gate verdicts by result",
	}, []string{"result"})
	PromotionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pickpulse",
		Name:      "promotions_total",
		Help:      "Total number of champion promotions written",
	})
)

// Gauge metrics
var (
	CLVDefinedRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pickpulse",
		Name:      "clv_defined_ratio",
		Help:      "Share of picks in the last run with a defined CLV",
	})
	ChallengerLogLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pickpulse",
		Name:      "challenger_logloss",
		Help:      "Log-loss of the best challenger in the last tournament",
	})
	ChallengerMeanCLV = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pickpulse",
		Name:      "challenger_mean_clv",
		Help:      "Mean CLV of the best challenger in the last tournament",
	})
	CalibrationSamples = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pickpulse",
		Name:      "calibration_samples",
		Help:      "Usable samples in the last calibration pass",
	})
)

// Histogram metrics
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pickpulse",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
	TournamentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pickpulse",
		Name:      "tournament_duration_seconds",
		Help:      "Duration of full tournament runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EvaluationRunsTotal)
		registry.MustRegister(PicksProcessedTotal)
		registry.MustRegister(GateVerdictsTotal)
		registry.MustRegister(PromotionsTotal)

		registry.MustRegister(CLVDefinedRatio)
		registry.MustRegister(ChallengerLogLoss)
		registry.MustRegister(ChallengerMeanCLV)
		registry.MustRegister(CalibrationSamples)

		registry.MustRegister(StageDuration)
		registry.MustRegister(TournamentDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records a completed pipeline run.
func RecordRun(status string) {
	EvaluationRunsTotal.WithLabelValues(status).Inc()
}

// RecordStage records one stage's duration.
func RecordStage(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordGateVerdict records a promotion gate outcome.
func RecordGateVerdict(passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	GateVerdictsTotal.WithLabelValues(result).Inc()
}

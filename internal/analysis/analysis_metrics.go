package analysis

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the analysis subsystem.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	InFlight            prometheus.Gauge
	ScansTotal          prometheus.Counter
	ManualTriggersTotal *prometheus.CounterVec
	ProviderCallsTotal  prometheus.Counter
	ProviderErrorsTotal prometheus.Counter
	ProviderDuration    prometheus.Histogram
	ProviderTokensIn    prometheus.Counter
	ProviderTokensOut   prometheus.Counter
}

// NewMetrics registers and returns analysis metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_analyses_total",
			Help: "Total analysis runs by settled outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_analysis_duration_seconds",
			Help:    "Duration of analysis runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}, []string{"outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_analyses_in_flight",
			Help: "Analysis calls currently in flight.",
		}),
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_analysis_scans_total",
			Help: "Total automatic candidate scans.",
		}),
		ManualTriggersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_analysis_manual_triggers_total",
			Help: "Total manual re-analysis requests by result.",
		}, []string{"result"}),
		ProviderCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_provider_calls_total",
			Help: "Total AI provider calls that returned a response.",
		}),
		ProviderErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_provider_errors_total",
			Help: "Total AI provider calls that failed.",
		}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_provider_call_duration_seconds",
			Help:    "Duration of individual AI provider calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}),
		ProviderTokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_provider_tokens_input_total",
			Help: "Total provider input tokens consumed.",
		}),
		ProviderTokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_provider_tokens_output_total",
			Help: "Total provider output tokens consumed.",
		}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.InFlight,
		m.ScansTotal,
		m.ManualTriggersTotal,
		m.ProviderCallsTotal,
		m.ProviderErrorsTotal,
		m.ProviderDuration,
		m.ProviderTokensIn,
		m.ProviderTokensOut,
	)

	return m
}

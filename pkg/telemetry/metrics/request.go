package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExchangeMetrics tracks chat exchanges.
//
// Metrics:
//   - gateway_exchanges_total: Exchanges by provider, model, transport, outcome
//   - gateway_exchange_duration_seconds: Exchange duration histogram
//   - gateway_tokens_total: Tokens reported by providers
//   - gateway_stream_frames_total: Frames written to streaming clients
type ExchangeMetrics struct {
	exchangesTotal   *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
	tokensTotal      *prometheus.CounterVec
	frames           *prometheus.CounterVec
}

// exchangeDurationBuckets cover LLM latencies from 100ms to 5 minutes.
var exchangeDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

// NewExchangeMetrics creates and registers exchange metrics.
func NewExchangeMetrics(namespace string, registry *prometheus.Registry) *ExchangeMetrics {
	em := &ExchangeMetrics{
		exchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "Total number of chat exchanges by outcome",
			},
			[]string{"provider", "model", "transport", "outcome"},
		),

		exchangeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Duration of chat exchanges in seconds",
				Buckets:   exchangeDurationBuckets,
			},
			[]string{"provider", "model", "transport"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Total number of tokens reported by providers",
			},
			[]string{"provider", "model", "type"},
		),

		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_frames_total",
				Help:      "Total number of frames written to streaming clients",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		em.exchangesTotal,
		em.exchangeDuration,
		em.tokensTotal,
		em.frames,
	)

	return em
}

// RecordExchange counts an exchange and observes its duration.
func (em *ExchangeMetrics) RecordExchange(provider, model, transport, outcome string, duration time.Duration) {
	em.exchangesTotal.WithLabelValues(provider, model, transport, outcome).Inc()
	em.exchangeDuration.WithLabelValues(provider, model, transport).Observe(duration.Seconds())
}

// RecordTokens records input and output token counts.
func (em *ExchangeMetrics) RecordTokens(provider, model string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		em.tokensTotal.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		em.tokensTotal.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
}

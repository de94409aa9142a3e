package metrics

import "github.com/prometheus/client_golang/prometheus"

// GatewayMetrics counts backend calls made by the portal and how long they took.
type GatewayMetrics struct {
	callsTotal     *prometheus.CounterVec
	callLatency    *prometheus.HistogramVec
	staleResponses *prometheus.CounterVec
	forcedLogouts  prometheus.Counter
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital_portal",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Backend calls by operation and outcome",
		}, []string{"op", "outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospital_portal",
			Subsystem: "gateway",
			Name:      "call_latency_seconds",
			Help:      "Latency of backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital_portal",
			Subsystem: "gateway",
			Name:      "stale_responses_total",
			Help:      "Search responses dropped because a newer request superseded them",
		}, []string{"op"}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_portal",
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared because a role was held without a token",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency, m.staleResponses, m.forcedLogouts)
	return m
}

func (m *GatewayMetrics) ObserveCall(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(op, outcome).Inc()
	m.callLatency.WithLabelValues(op).Observe(seconds)
}

func (m *GatewayMetrics) ObserveStale(op string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(op).Inc()
}

func (m *GatewayMetrics) ObserveForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}

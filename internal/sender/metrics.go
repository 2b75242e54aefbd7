package sender

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Sender's prometheus instrumentation. A nil *Metrics is
// valid and every method becomes a no-op, so callers that don't care about
// metrics (tests, the gen-schema CLI) never need a registry.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	reconnects      prometheus.Counter
	floodWaits      prometheus.Counter
	activeRequests  prometheus.Gauge
}

// NewMetrics registers Sender's collectors on reg and returns a Metrics
// handle. Pass a dedicated prometheus.Registry (or prometheus.DefaultRegisterer)
// from cmd/mtproto-client's wiring.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtproto",
			Subsystem: "sender",
			Name:      "requests_total",
			Help:      "RPC requests by outcome (ok, rpc_error, error).",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mtproto",
			Subsystem: "sender",
			Name:      "request_duration_seconds",
			Help:      "Time from Invoke() call to resolved response.",
			Buckets:   prometheus.DefBuckets,
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mtproto",
			Subsystem: "sender",
			Name:      "reconnects_total",
			Help:      "Number of times the connection was rebuilt.",
		}),
		floodWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mtproto",
			Subsystem: "sender",
			Name:      "flood_waits_total",
			Help:      "Number of FLOOD_WAIT_N responses observed.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtproto",
			Subsystem: "sender",
			Name:      "active_requests",
			Help:      "In-flight Invoke() calls awaiting a response.",
		}),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.reconnects, m.floodWaits, m.activeRequests)
	return m
}

func (m *Metrics) observeRequest(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	m.requestDuration.Observe(seconds)
}

func (m *Metrics) incReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) incFloodWait() {
	if m == nil {
		return
	}
	m.floodWaits.Inc()
}

func (m *Metrics) setActiveRequests(n float64) {
	if m == nil {
		return
	}
	m.activeRequests.Set(n)
}

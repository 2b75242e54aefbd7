package updates

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments MessageBox's gap detection and catch-up behavior so
// operators can see how often the server's update stream actually drops
// packets versus merely reorders them.
type Metrics struct {
	gapsDetected   prometheus.Counter
	catchUps       *prometheus.CounterVec
	resyncsTooLong prometheus.Counter
}

// NewMetrics registers MessageBox's counters against reg. reg may be nil,
// in which case the counters are created but never registered, so nothing
// is exported. A nil *Metrics is also safe: every method checks for it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gapsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mtproto_updates_gaps_detected_total",
			Help: "pts/seq gaps detected in the update stream.",
		}),
		catchUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtproto_updates_catchups_total",
			Help: "getDifference/getChannelDifference catch-up calls, by scope.",
		}, []string{"scope"}),
		resyncsTooLong: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mtproto_updates_resync_too_long_total",
			Help: "differenceTooLong/channelDifferenceTooLong full resyncs.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.gapsDetected, m.catchUps, m.resyncsTooLong)
	}
	return m
}

func (m *Metrics) incGap() {
	if m == nil {
		return
	}
	m.gapsDetected.Inc()
}

func (m *Metrics) incCatchUp(scope string) {
	if m == nil {
		return
	}
	m.catchUps.WithLabelValues(scope).Inc()
}

func (m *Metrics) incResyncTooLong() {
	if m == nil {
		return
	}
	m.resyncsTooLong.Inc()
}

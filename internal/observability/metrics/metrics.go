package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead intake flow.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	intakeLatency    *prometheus.HistogramVec
	followUpFailures *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revsnap",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead form submissions by type and outcome",
		}, []string{"type", "status"}),
		intakeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "revsnap",
			Subsystem: "leads",
			Name:      "intake_latency_seconds",
			Help:      "Latency of lead intake processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		followUpFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revsnap",
			Subsystem: "leads",
			Name:      "follow_up_failures_total",
			Help:      "Best-effort lead follow-ups that failed",
		}, []string{"recorder"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.intakeLatency, m.followUpFailures)
	return m
}

func (m *LeadMetrics) ObserveSubmission(leadType, status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(leadType, status).Inc()
}

func (m *LeadMetrics) ObserveLatency(leadType string, seconds float64) {
	if m == nil {
		return
	}
	m.intakeLatency.WithLabelValues(leadType).Observe(seconds)
}

func (m *LeadMetrics) ObserveFollowUpFailure(recorder string) {
	if m == nil {
		return
	}
	m.followUpFailures.WithLabelValues(recorder).Inc()
}

// TelemetryMetrics counts events relayed to telemetry sinks.
type TelemetryMetrics struct {
	eventsTotal    *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	activeSessions prometheus.Gauge
}

func NewTelemetryMetrics(reg prometheus.Registerer) *TelemetryMetrics {
	m := &TelemetryMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revsnap",
			Subsystem: "telemetry",
			Name:      "events_total",
			Help:      "Telemetry events by name",
		}, []string{"event"}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "revsnap",
			Subsystem: "telemetry",
			Name:      "events_dropped_total",
			Help:      "Telemetry events dropped because the buffer was full",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "revsnap",
			Subsystem: "telemetry",
			Name:      "active_sessions",
			Help:      "Open page-view sessions",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.droppedTotal, m.activeSessions)
	return m
}

func (m *TelemetryMetrics) ObserveEvent(name string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(name).Inc()
}

func (m *TelemetryMetrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}

func (m *TelemetryMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

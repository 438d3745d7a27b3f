package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking wizard.
type BookingMetrics struct {
	submissions     *prometheus.CounterVec
	paymentFailures prometheus.Counter
	externalLatency *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebooking",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Appointment submissions by outcome",
		}, []string{"outcome"}),
		paymentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carebooking",
			Subsystem: "booking",
			Name:      "payment_failures_total",
			Help:      "Payments that failed after the appointment was created",
		}),
		externalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carebooking",
			Subsystem: "hospital_api",
			Name:      "call_duration_seconds",
			Help:      "Latency of remote hospital API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carebooking",
			Subsystem: "booking",
			Name:      "active_sessions",
			Help:      "Booking sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.paymentFailures, m.externalLatency, m.activeSessions)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObservePaymentFailure() {
	if m == nil {
		return
	}
	m.paymentFailures.Inc()
}

func (m *BookingMetrics) ObserveExternalCall(op string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.externalLatency.WithLabelValues(op, status).Observe(seconds)
}

func (m *BookingMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

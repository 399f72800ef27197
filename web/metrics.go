package web

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts statuses requests by handle kind and response code.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statusbridge",
			Name:      "statuses_requests_total",
			Help:      "Statuses requests by account kind and HTTP status code.",
		}, []string{"kind", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statusbridge",
			Name:      "statuses_request_duration_seconds",
			Help:      "Time spent resolving statuses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(kind string, code int, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

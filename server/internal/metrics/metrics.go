package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ntfy_bridge"

// Metrics holds the bridge's collectors.
type Metrics struct {
	reg *prometheus.Registry

	webhooks       *prometheus.CounterVec
	alertsReceived prometheus.Counter
	deliveries     *prometheus.CounterVec
	duration       prometheus.Histogram
}

// New registers all bridge collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Inbound webhook requests by response code.",
		}, []string{"code"}),
		alertsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_received_total",
			Help:      "Alerts received across all webhook events.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Notification deliveries to ntfy by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent on one ntfy publish request.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.reg.MustRegister(m.webhooks, m.alertsReceived, m.deliveries, m.duration)

	// Pre-create both result series so they export as 0 before any delivery.
	m.deliveries.WithLabelValues("ok")
	m.deliveries.WithLabelValues("failed")
	return m
}

// AlertsReceived counts n alerts from one webhook event.
func (m *Metrics) AlertsReceived(n int) {
	m.alertsReceived.Add(float64(n))
}

// Delivery records the result and latency of one publish request.
func (m *Metrics) Delivery(ok bool, elapsed time.Duration) {
	result := "failed"
	if ok {
		result = "ok"
	}
	m.deliveries.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Webhook counts one inbound webhook answered with code.
func (m *Metrics) Webhook(code int) {
	m.webhooks.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

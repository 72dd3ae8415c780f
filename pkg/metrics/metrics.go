package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for dispatch jobs.
type Metrics struct {
	MessagesTotal   *prometheus.CounterVec
	JobsTotal       *prometheus.CounterVec
	JobsActive      prometheus.Gauge
	JobsQueued      prometheus.Gauge
	SendDuration    prometheus.Histogram
	RuleWaitSeconds prometheus.Histogram

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_messages_total",
				Help: "Contact/rule pairs processed, by outcome (sent, skipped, error)",
			},
			[]string{"outcome"},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_jobs_total",
				Help: "Jobs that reached a terminal status",
			},
			[]string{"status"},
		),
		JobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_jobs_running",
			Help: "Jobs currently running",
		}),
		JobsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_jobs_queued",
			Help: "Jobs waiting for a free worker slot",
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_send_duration_seconds",
			Help:    "Transport send latency",
			Buckets: prometheus.DefBuckets,
		}),
		RuleWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_rule_wait_seconds",
			Help:    "Time a job waited for a rule's scheduled send time",
			Buckets: []float64{0, 1, 10, 60, 600, 3600, 6 * 3600, 24 * 3600},
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests served, by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.MessagesTotal,
		m.JobsTotal,
		m.JobsActive,
		m.JobsQueued,
		m.SendDuration,
		m.RuleWaitSeconds,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) MessageSent(d time.Duration) {
	m.MessagesTotal.WithLabelValues("sent").Inc()
	m.SendDuration.Observe(d.Seconds())
}

func (m *Metrics) MessageFailed(d time.Duration) {
	m.MessagesTotal.WithLabelValues("error").Inc()
	m.SendDuration.Observe(d.Seconds())
}

func (m *Metrics) MessageSkipped() {
	m.MessagesTotal.WithLabelValues("skipped").Inc()
}

func (m *Metrics) RuleWaited(d time.Duration) {
	m.RuleWaitSeconds.Observe(d.Seconds())
}

func (m *Metrics) JobQueued() {
	m.JobsQueued.Inc()
}

func (m *Metrics) JobStarted() {
	m.JobsQueued.Dec()
	m.JobsActive.Inc()
}

// JobCompleted records a terminal status. wasRunning tells whether the job
// got a worker slot before it ended.
func (m *Metrics) JobCompleted(status string, wasRunning bool) {
	if wasRunning {
		m.JobsActive.Dec()
	} else {
		m.JobsQueued.Dec()
	}
	m.JobsTotal.WithLabelValues(status).Inc()
}

// ObserveRequest records one served HTTP request. route should be the route
// template, not the raw path, to keep label cardinality low.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "mentor_site"

// MetricsSnapshot summarises runtime health for the admin dashboard.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	StoreErrors              uint64    `json:"storeErrors"`
	ReviewsSubmitted         uint64    `json:"reviewsSubmitted"`
	MessagesReceived         uint64    `json:"messagesReceived"`
	NotificationsSent        uint64    `json:"notificationsSent"`
	NotificationsFailed      uint64    `json:"notificationsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// totals mirrors the Prometheus counters so the dashboard can read them
// without scraping.
type totals struct {
	cacheHits, cacheMisses   atomic.Uint64
	requests, requestNanos   atomic.Uint64
	storeOps, storeErrors    atomic.Uint64
	reviews, messages        atomic.Uint64
	notifySent, notifyFailed atomic.Uint64
}

// MetricsService owns the Prometheus registry of the site API. A nil
// *MetricsService ignores every observation.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration  *prometheus.HistogramVec
	cacheLookups  *prometheus.HistogramVec
	cacheWrites   prometheus.Histogram
	cacheRatio    prometheus.Gauge
	storeDuration *prometheus.HistogramVec
	storeFailures *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	notifications *prometheus.CounterVec

	totals totals
}

// NewMetricsService registers the API collectors plus the Go runtime and
// process collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheLookups: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookup_seconds",
			Help:      "Public list cache lookups by result.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"result"}),
		cacheWrites: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "write_seconds",
			Help:      "Public list cache writes.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		cacheRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Share of public list lookups served from cache.",
		}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Document store calls by operation and collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "collection"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed document store calls.",
		}, []string{"operation", "collection"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "public_submissions_total",
			Help:      "Reviews and contact messages received from visitors.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Admin notification emails by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.httpDuration, m.cacheLookups, m.cacheWrites, m.cacheRatio,
		m.storeDuration, m.storeFailures, m.submissions, m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest implements middleware.RequestObserver.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
	m.totals.requests.Add(1)
	m.totals.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records one public list lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.totals.cacheHits.Add(1)
	} else {
		m.totals.cacheMisses.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Observe(duration.Seconds())
	if ratio, ok := m.hitRatio(); ok {
		m.cacheRatio.Set(ratio)
	}
}

// ObserveCacheWrite records one public list cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// ObserveStoreOperation implements repository.StoreObserver.
func (m *MetricsService) ObserveStoreOperation(operation, collection string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	m.totals.storeOps.Add(1)
	if err != nil {
		m.storeFailures.WithLabelValues(operation, collection).Inc()
		m.totals.storeErrors.Add(1)
	}
}

// RecordSubmission counts a public form submission ("review" or "contact").
func (m *MetricsService) RecordSubmission(kind string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind).Inc()
	switch kind {
	case "review":
		m.totals.reviews.Add(1)
	case "contact":
		m.totals.messages.Add(1)
	}
}

// RecordNotification counts a delivery outcome ("sent", "failed", "dropped").
func (m *MetricsService) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
	if outcome == "sent" {
		m.totals.notifySent.Add(1)
		return
	}
	m.totals.notifyFailed.Add(1)
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := m.totals.cacheHits.Load()
	total := hits + m.totals.cacheMisses.Load()
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}

// Snapshot returns the counters shown on the admin dashboard.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	now := time.Now().UTC()
	if m == nil {
		return MetricsSnapshot{GeneratedAt: now}
	}
	snap := MetricsSnapshot{
		CacheHits:           m.totals.cacheHits.Load(),
		CacheMisses:         m.totals.cacheMisses.Load(),
		RequestsTotal:       m.totals.requests.Load(),
		StoreOperations:     m.totals.storeOps.Load(),
		StoreErrors:         m.totals.storeErrors.Load(),
		ReviewsSubmitted:    m.totals.reviews.Load(),
		MessagesReceived:    m.totals.messages.Load(),
		NotificationsSent:   m.totals.notifySent.Load(),
		NotificationsFailed: m.totals.notifyFailed.Load(),
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         now,
	}
	snap.CacheHitRatio, _ = m.hitRatio()
	if snap.RequestsTotal > 0 {
		snap.AverageRequestDurationMs = float64(m.totals.requestNanos.Load()) / float64(snap.RequestsTotal) / float64(time.Millisecond)
	}
	return snap
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the ingestion
// pipeline and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	pipelineRuns    *prometheus.CounterVec
	pipelineTime    *prometheus.HistogramVec
	sheetsCalls     *prometheus.CounterVec
	rowsAccepted    *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheHitRatio   prometheus.Gauge

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the pipeline collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pipelineRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Pipeline executions per source and outcome",
	}, []string{"source", "outcome"})

	pipelineTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_duration_seconds",
		Help:    "End-to-end pipeline duration per source",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40},
	}, []string{"source"})

	sheetsCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_api_calls_total",
		Help: "Google Sheets API calls per source and result",
	}, []string{"source", "result"})

	rowsAccepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rows_accepted_total",
		Help: "Rows that survived normalization and filtering",
	}, []string{"source"})

	rowsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rows_rejected_total",
		Help: "Rows discarded during normalization, by reason",
	}, []string{"source", "reason"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, pipelineRuns, pipelineTime,
		sheetsCalls, rowsAccepted, rowsRejected, cacheHits, cacheMisses, cacheHitRatio, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		pipelineRuns:    pipelineRuns,
		pipelineTime:    pipelineTime,
		sheetsCalls:     sheetsCalls,
		rowsAccepted:    rowsAccepted,
		rowsRejected:    rowsRejected,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheHitRatio:   cacheHitRatio,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObservePipelineRun records one pipeline execution and its duration.
func (m *MetricsService) ObservePipelineRun(source, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(source, outcome).Inc()
	m.pipelineTime.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveSheetsCall counts one upstream API call.
func (m *MetricsService) ObserveSheetsCall(source, result string) {
	if m == nil {
		return
	}
	m.sheetsCalls.WithLabelValues(source, result).Inc()
}

// ObserveRows records accepted row totals and the per-reason rejection counts
// from one pipeline run.
func (m *MetricsService) ObserveRows(source string, accepted int, rejected map[string]int) {
	if m == nil {
		return
	}
	m.rowsAccepted.WithLabelValues(source).Add(float64(accepted))
	for reason, count := range rejected {
		m.rowsRejected.WithLabelValues(source, reason).Add(float64(count))
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

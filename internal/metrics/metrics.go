// Package metrics exposes Prometheus collectors for the import pipeline and
// the HTTP layer.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ntpusu/su-services/representatives/internal/importer"
)

const namespace = "representatives"

// Fetch results
const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics owns a private registry so tests can create as many as they need
type Metrics struct {
	registry *prometheus.Registry

	syncRuns       *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	records        *prometheus.GaugeVec
	droppedRows    *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
	sheetFetches   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	datasetReloads *prometheus.CounterVec
}

// New registers all collectors. withRuntime adds the Go and process collectors.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Import runs by outcome.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall-clock duration of import runs.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the stored dataset per collection.",
		}, []string{"collection"}),
		droppedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Rows dropped during transform because a join key was empty.",
		}, []string{"collection"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful import run.",
		}),
		sheetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_fetch_total",
			Help:      "Sheet downloads by sheet and result.",
		}, []string{"sheet", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sheet_fetch_duration_seconds",
			Help:      "Duration of sheet downloads including redirects and retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sheet"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		datasetReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads in the server by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.syncRuns,
		m.syncDuration,
		m.records,
		m.droppedRows,
		m.lastSuccess,
		m.sheetFetches,
		m.fetchDuration,
		m.httpRequests,
		m.datasetReloads,
	)
	if withRuntime {
		m.registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveFetch implements sheets.Observer
func (m *Metrics) ObserveFetch(sheet string, err error, elapsed time.Duration) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.sheetFetches.WithLabelValues(sheet, result).Inc()
	m.fetchDuration.WithLabelValues(sheet).Observe(elapsed.Seconds())
}

// ObserveRun implements importer.RunRecorder
func (m *Metrics) ObserveRun(result *importer.Result, err error) {
	if err != nil || result == nil {
		m.syncRuns.WithLabelValues("failed").Inc()
		return
	}

	m.syncRuns.WithLabelValues(string(result.Outcome)).Inc()
	m.syncDuration.Observe(result.Duration.Seconds())
	m.lastSuccess.SetToCurrentTime()

	m.droppedRows.WithLabelValues("meetings").Add(float64(result.Dropped.Meetings))
	m.droppedRows.WithLabelValues("representatives").Add(float64(result.Dropped.Representatives))
	m.droppedRows.WithLabelValues("assignments").Add(float64(result.Dropped.Assignments))

	if result.Dataset != nil {
		meetings, reps, assignments := result.Dataset.Counts()
		m.SetRecords(meetings, reps, assignments)
	}
}

// SetRecords updates the per-collection record gauges
func (m *Metrics) SetRecords(meetings, representatives, assignments int) {
	m.records.WithLabelValues("meetings").Set(float64(meetings))
	m.records.WithLabelValues("representatives").Set(float64(representatives))
	m.records.WithLabelValues("assignments").Set(float64(assignments))
}

// ObserveRequest counts one served HTTP request
func (m *Metrics) ObserveRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// ObserveReload counts one dataset reload attempt in the server
func (m *Metrics) ObserveReload(err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.datasetReloads.WithLabelValues(result).Inc()
}

// Push sends the registry to a Prometheus Pushgateway. It is used by one-shot
// sync runs, which exit before they could be scraped.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return errors.New("pushgateway url is empty")
	}
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

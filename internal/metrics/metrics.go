package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks upstream call outcomes and scan activity.
type Collector struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	scanDecodes      prometheus.Counter
	scanMisses       prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_upstream_requests_total",
			Help: "Upstream SysTrack API calls by route and status code.",
		}, []string{"route", "status"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "console_upstream_latency_seconds",
			Help:    "Upstream SysTrack API call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		scanDecodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_scan_decodes_total",
			Help: "Barcode frames that produced a decode.",
		}),
		scanMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_scan_misses_total",
			Help: "Barcode frames with no readable code.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		c.upstreamRequests,
		c.upstreamLatency,
		c.scanDecodes,
		c.scanMisses,
	)

	return c
}

// RecordUpstream implements upstream.Recorder. Status 0 marks a
// transport failure.
func (c *Collector) RecordUpstream(route string, status int, elapsed time.Duration) {
	c.upstreamRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.upstreamLatency.Observe(elapsed.Seconds())
}

func (c *Collector) RecordScanDecode() {
	c.scanDecodes.Inc()
}

func (c *Collector) RecordScanMiss() {
	c.scanMisses.Inc()
}

// Handler serves the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

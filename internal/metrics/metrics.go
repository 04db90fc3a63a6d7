// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal    *prometheus.CounterVec
	contentBytes  *prometheus.CounterVec
	partsTotal    *prometheus.CounterVec
	activeWorkers prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times; observation helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebind_pages_total",
				Help: "Total pages processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		contentBytes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebind_content_bytes_total",
				Help: "Total content bytes appended to output, labeled by kind.",
			},
			[]string{"kind"},
		)

		partsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebind_parts_total",
				Help: "Total output parts written, labeled by extension.",
			},
			[]string{"ext"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitebind_active_workers",
				Help: "Number of workers currently fetching a page.",
			},
		)
	})
}

// SanitizeSite extracts a lowercase hostname label from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one absorbed page result.
func ObservePage(site string, outcome string) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveContentBytes counts bytes appended to the current output unit.
func ObserveContentBytes(kind string, n int) {
	if contentBytes == nil || n <= 0 {
		return
	}
	contentBytes.WithLabelValues(kind).Add(float64(n))
}

// ObservePart counts one flushed output part.
func ObservePart(ext string) {
	if partsTotal == nil {
		return
	}
	partsTotal.WithLabelValues(strings.TrimPrefix(ext, ".")).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Inc()
	}
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Dec()
	}
}

// Package metrics exposes scrape counters and timings to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records scrape outcomes. A nil *Collector is a no-op.
type Collector struct {
	scrapesTotal   *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	booksExtracted *prometheus.CounterVec
	sessionsOpen   prometheus.Gauge
}

// NewCollector registers the scrape metrics on reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		scrapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrapes_total",
				Help:      "Total number of scrape requests by provider, kind and outcome",
			},
			[]string{"provider", "kind", "status"},
		),
		scrapeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Scrape duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"provider", "kind"},
		),
		booksExtracted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "books_extracted_total",
				Help:      "Total number of list entries returned",
			},
			[]string{"provider"},
		),
		sessionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "browser_sessions_open",
				Help:      "Number of browser sessions currently open",
			},
		),
	}
}

// RecordScrape counts one scrape and observes its duration.
func (c *Collector) RecordScrape(provider, kind, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.scrapesTotal.WithLabelValues(provider, kind, status).Inc()
	c.scrapeDuration.WithLabelValues(provider, kind).Observe(d.Seconds())
}

// RecordBooks adds the number of list entries returned.
func (c *Collector) RecordBooks(provider string, n int) {
	if c == nil {
		return
	}
	c.booksExtracted.WithLabelValues(provider).Add(float64(n))
}

// SessionOpened and SessionClosed track open browser sessions.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsOpen.Inc()
}

func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsOpen.Dec()
}

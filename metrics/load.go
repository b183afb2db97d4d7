// Package metrics exposes Prometheus instrumentation for dataset loads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoadMetrics records per-city fetch and cleaning outcomes. A nil
// *LoadMetrics is valid and records nothing.
type LoadMetrics struct {
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	standardized  *prometheus.GaugeVec
	retained      *prometheus.GaugeVec
	duplicates    prometheus.Counter
	trimmed       prometheus.Counter
	cacheHits     *prometheus.CounterVec
}

// NewLoadMetrics registers the load metrics on the provided registerer
func NewLoadMetrics(reg prometheus.Registerer) *LoadMetrics {
	if reg == nil {
		return &LoadMetrics{}
	}
	m := &LoadMetrics{
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listings_fetch_duration_seconds",
			Help:    "Duration of raw listing downloads per city.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"city"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listings_fetch_failures_total",
			Help: "Failed raw listing downloads per city.",
		}, []string{"city"}),
		standardized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "listings_standardized_rows",
			Help: "Rows mapped into the canonical schema per city.",
		}, []string{"city"}),
		retained: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "listings_retained_rows",
			Help: "Rows kept after deduplication and price trimming per city.",
		}, []string{"city"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listings_duplicates_dropped_total",
			Help: "Rows dropped for repeating a (city, id) pair.",
		}),
		trimmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listings_price_outliers_trimmed_total",
			Help: "Rows dropped for an out-of-band price.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listings_cache_hits_total",
			Help: "Dataset loads served from a cache tier.",
		}, []string{"tier"}),
	}
	reg.MustRegister(m.fetchDuration, m.fetchFailures, m.standardized, m.retained, m.duplicates, m.trimmed, m.cacheHits)
	return m
}

// ObserveFetch records how long a city download took
func (m *LoadMetrics) ObserveFetch(city string, d time.Duration) {
	if m == nil || m.fetchDuration == nil {
		return
	}
	m.fetchDuration.WithLabelValues(normalizeLabel(city)).Observe(d.Seconds())
}

// IncFetchFailure counts a failed city download
func (m *LoadMetrics) IncFetchFailure(city string) {
	if m == nil || m.fetchFailures == nil {
		return
	}
	m.fetchFailures.WithLabelValues(normalizeLabel(city)).Inc()
}

// SetStandardized records the canonical row count of a city
func (m *LoadMetrics) SetStandardized(city string, rows int) {
	if m == nil || m.standardized == nil {
		return
	}
	m.standardized.WithLabelValues(normalizeLabel(city)).Set(float64(rows))
}

// SetRetained records the final row count of a city
func (m *LoadMetrics) SetRetained(city string, rows int) {
	if m == nil || m.retained == nil {
		return
	}
	m.retained.WithLabelValues(normalizeLabel(city)).Set(float64(rows))
}

// AddDuplicatesDropped counts rows removed by deduplication
func (m *LoadMetrics) AddDuplicatesDropped(n int) {
	if m == nil || m.duplicates == nil || n <= 0 {
		return
	}
	m.duplicates.Add(float64(n))
}

// AddTrimmed counts rows removed by price trimming
func (m *LoadMetrics) AddTrimmed(n int) {
	if m == nil || m.trimmed == nil || n <= 0 {
		return
	}
	m.trimmed.Add(float64(n))
}

// IncCacheHit counts a load served from the named cache tier
func (m *LoadMetrics) IncCacheHit(tier string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(tier)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

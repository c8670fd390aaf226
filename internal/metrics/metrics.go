// Package metrics exposes Prometheus instruments for the product lookup chain.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LookupMetrics counts cache traffic and provider outcomes of product lookups.
// All methods are safe on a nil receiver so callers may run without metrics.
type LookupMetrics struct {
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheErrors      prometheus.Counter
	providerHits     *prometheus.CounterVec
	providerDeclines *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	fallbacks        prometheus.Counter
}

// Singleton for the default registry (avoid double registration).
var (
	defaultInstance *LookupMetrics
	defaultOnce     sync.Once
)

// Default returns the lookup metrics registered on the Prometheus default registry.
func Default() *LookupMetrics {
	defaultOnce.Do(func() {
		defaultInstance = NewLookupMetrics(prometheus.DefaultRegisterer)
	})
	return defaultInstance
}

// NewLookupMetrics registers a fresh set of lookup instruments on reg.
func NewLookupMetrics(reg prometheus.Registerer) *LookupMetrics {
	factory := promauto.With(reg)
	return &LookupMetrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lookup_cache_hits_total",
			Help: "Total number of product lookups answered from cache",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lookup_cache_misses_total",
			Help: "Total number of product lookups not found in cache",
		}),
		cacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lookup_cache_errors_total",
			Help: "Total number of failed cache reads or writes",
		}),
		providerHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_lookup_provider_hits_total",
			Help: "Total number of lookups answered by a provider",
		}, []string{"provider"}),
		providerDeclines: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_lookup_provider_declines_total",
			Help: "Total number of lookups a provider declined (error, timeout or no name)",
		}, []string{"provider"}),
		providerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pantry_lookup_provider_duration_seconds",
			Help:    "Time taken by a single provider call",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"provider"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lookup_fallbacks_total",
			Help: "Total number of lookups where every provider declined",
		}),
	}
}

func (m *LookupMetrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *LookupMetrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *LookupMetrics) CacheError() {
	if m != nil {
		m.cacheErrors.Inc()
	}
}

// ProviderResult records one provider call and whether it produced a product.
func (m *LookupMetrics) ProviderResult(provider string, found bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if found {
		m.providerHits.WithLabelValues(provider).Inc()
		return
	}
	m.providerDeclines.WithLabelValues(provider).Inc()
}

func (m *LookupMetrics) Fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}

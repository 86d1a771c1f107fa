package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "hyperball.cache.hits"
	metricCacheMisses = "hyperball.cache.misses"

	attrCacheName = "cache"
)

// CacheStatsProvider exposes cumulative hit/miss counts for an
// observable cache, such as *lru.Cache[K, V].
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers asynchronous gauges that poll blob and
// diff cache stats providers on each collection. Either provider may be
// nil, in which case that cache's series is omitted.
func RegisterCacheMetrics(mt metric.Meter, blob, diff CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Cumulative cache hits by cache name"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Cumulative cache misses by cache name"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	providers := map[string]CacheStatsProvider{
		"blob": blob,
		"diff": diff,
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		for name, provider := range providers {
			if provider == nil {
				continue
			}

			attrs := metric.WithAttributes(attribute.String(attrCacheName, name))
			obs.ObserveInt64(hits, provider.CacheHits(), attrs)
			obs.ObserveInt64(misses, provider.CacheMisses(), attrs)
		}

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}

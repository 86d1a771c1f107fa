package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricVertexCoverSize  = "hyperball.vertexcover.size"
	metricMatchingSize     = "hyperball.matching.size"
	metricWatcherFires     = "hyperball.watcher.fires.total"
	metricAffectedVertices = "hyperball.affected_vertices.total"
	metricBatchDuration    = "hyperball.batch.duration.seconds"
)

// EngineMetrics holds OTel instruments for the neighbourhood engine's
// maintenance work: vertex-cover/matching size, top-node watcher
// activity, and batch update cost.
type EngineMetrics struct {
	vertexCoverSize  metric.Int64Gauge
	matchingSize     metric.Int64Gauge
	watcherFires     metric.Int64Counter
	affectedVertices metric.Int64Counter
	batchDuration    metric.Float64Histogram
}

// EngineStats holds the statistics for a single AddEdges batch, decoupled
// from the engine's internal types.
type EngineStats struct {
	VertexCoverSize  int64
	MatchingSize     int64
	WatcherFires     int64
	AffectedVertices int64
	BatchDuration    time.Duration
}

// NewEngineMetrics creates engine metric instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	vc, err := mt.Int64Gauge(metricVertexCoverSize,
		metric.WithDescription("Current size of the dynamic vertex cover"),
		metric.WithUnit("{vertex}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricVertexCoverSize, err)
	}

	matching, err := mt.Int64Gauge(metricMatchingSize,
		metric.WithDescription("Current size of the maximal matching backing the vertex cover"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchingSize, err)
	}

	fires, err := mt.Int64Counter(metricWatcherFires,
		metric.WithDescription("Total top-node watcher callback firings"),
		metric.WithUnit("{fire}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricWatcherFires, err)
	}

	affected, err := mt.Int64Counter(metricAffectedVertices,
		metric.WithDescription("Total vertices recomputed across AddEdges batches"),
		metric.WithUnit("{vertex}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAffectedVertices, err)
	}

	batchDur, err := mt.Float64Histogram(metricBatchDuration,
		metric.WithDescription("AddEdges batch processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBatchDuration, err)
	}

	return &EngineMetrics{
		vertexCoverSize:  vc,
		matchingSize:     matching,
		watcherFires:     fires,
		affectedVertices: affected,
		batchDuration:    batchDur,
	}, nil
}

// RecordBatch records engine statistics for a completed AddEdges batch.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordBatch(ctx context.Context, stats EngineStats) {
	if em == nil {
		return
	}

	em.vertexCoverSize.Record(ctx, stats.VertexCoverSize)
	em.matchingSize.Record(ctx, stats.MatchingSize)
	em.watcherFires.Add(ctx, stats.WatcherFires)
	em.affectedVertices.Add(ctx, stats.AffectedVertices)
	em.batchDuration.Record(ctx, stats.BatchDuration.Seconds())
}

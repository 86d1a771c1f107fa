// Package hyperball implements the dynamic approximate neighbourhood
// engine (DANF): H+1 HyperLogLog counter arrays kept incrementally
// correct for vertex-cover members, an on-demand memoised recomputation
// path for everyone else, and a Top-Node Watcher observing each batch's
// before/after counts. It orchestrates pkg/graphmodel, pkg/vertexcover,
// pkg/msbfs, pkg/hll and pkg/topnode, the way the teacher's
// pkg/framework orchestrates its own leaf subsystems from one driver.
package hyperball

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/hyperball/pkg/alg/lru"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
	"github.com/Sumatoshi-tech/hyperball/pkg/hll"
	"github.com/Sumatoshi-tech/hyperball/pkg/msbfs"
	"github.com/Sumatoshi-tech/hyperball/pkg/observability"
	"github.com/Sumatoshi-tech/hyperball/pkg/topnode"
	"github.com/Sumatoshi-tech/hyperball/pkg/vertexcover"
)

const (
	defaultMemoCapacity    = 4096
	defaultWatcherCapacity = 64
)

// WatcherParams configures the Top-Node Watcher's firing thresholds.
type WatcherParams struct {
	// PercentageChange is the minimum (count_after-count_before)/count_before
	// growth fraction a touched vertex must clear to enter the descending set.
	PercentageChange float64

	// MinNodeCount is the minimum count_after a touched vertex must reach.
	MinNodeCount uint64

	// UpdateIntervalMs is the minimum time between callback firings; the
	// first firing also waits this long after New.
	UpdateIntervalMs int64

	// CounterCapacity caps the descending (ratio, vertex) set size.
	CounterCapacity int
}

// Params fixes the counter shape and HyperBall depth shared by every
// array the engine allocates, plus the memo cache and watcher settings.
type Params struct {
	// H is the number of static HyperBall iterations (neighbourhood radius).
	H int

	// LogM and RegisterSize size every counter array the engine allocates.
	LogM         uint8
	RegisterSize uint8

	// Seed seeds the Jenkins mix shared by every counter array.
	Seed uint64

	// MemoCapacity bounds the non-VC recomputation memo's entry count.
	// 0 selects defaultMemoCapacity.
	MemoCapacity int

	Watcher WatcherParams
}

// WatcherCallback receives the descending (ratio, vertex) set when the
// Top-Node Watcher fires.
type WatcherCallback func(entries []topnode.Entry)

// memoKey identifies one non-cover vertex's scratch recomputation at a
// given hop.
type memoKey struct {
	vertex int64
	hop    int
}

// Engine is the dynamic approximate neighbourhood engine: H+1 HLL
// counter arrays, a dynamic vertex cover telling it which vertices need
// dense recomputation, and a Top-Node Watcher over each batch's effect.
type Engine struct {
	mu sync.Mutex

	graph  *graphmodel.MutableGraph
	cover  *vertexcover.Cover
	params Params

	counters []*hll.Array // counters[h], h in [0,H]

	memo *lru.Cache[memoKey, *hll.Array]

	watcher   *topnode.Tree
	watcherFn WatcherCallback
	lastFired time.Time

	metrics *observability.EngineMetrics
	tracer  trace.Tracer
}

// New builds the engine over provider's current edge set: it copies
// provider into an owned MutableGraph, builds the initial vertex cover,
// seeds every vertex's identity counter C_0, and runs H static HyperBall
// iterations to populate C_1..C_H.
func New(provider graphmodel.Provider, params Params) (*Engine, error) {
	if params.H < 0 {
		return nil, fmt.Errorf("hyperball: H must be non-negative: %w", hberrors.ErrInvalidArgument)
	}

	graph := graphmodel.NewMutableGraph()

	provider.IterateAllEdges(func(e graphmodel.Edge) bool {
		graph.AddEdge(e)

		return true
	})

	graph.AddNode(provider.NumNodes() - 1)

	n := graph.NumNodes()
	hllParams := hll.Params{LogM: params.LogM, RegisterSize: params.RegisterSize, Seed: params.Seed}

	counters := make([]*hll.Array, params.H+1)

	for h := range counters {
		arr, err := hll.New(hllParams, uint64(n))
		if err != nil {
			return nil, fmt.Errorf("hyperball: allocate C_%d: %w", h, err)
		}

		counters[h] = arr
	}

	for v := int64(0); v < n; v++ {
		if err := counters[0].Add(uint64(v), uint64(v)); err != nil {
			return nil, fmt.Errorf("hyperball: seed identity set for %d: %w", v, err)
		}
	}

	cover := vertexcover.New(graph)

	graph.IterateAllEdges(func(e graphmodel.Edge) bool {
		cover.InsertEdge(e)

		return true
	})

	for h := 1; h <= params.H; h++ {
		for v := int64(0); v < n; v++ {
			if err := counters[h].Union(counters[h-1], uint64(v), uint64(v)); err != nil {
				return nil, fmt.Errorf("hyperball: build C_%d[%d]: %w", h, v, err)
			}

			it := graph.Successors(v)
			for w := it.NextLong(); w != graphmodel.EndOfSuccessors; w = it.NextLong() {
				if err := counters[h].Union(counters[h-1], uint64(v), uint64(w)); err != nil {
					return nil, fmt.Errorf("hyperball: build C_%d[%d]: %w", h, v, err)
				}
			}
		}
	}

	memoCap := params.MemoCapacity
	if memoCap <= 0 {
		memoCap = defaultMemoCapacity
	}

	watcherCap := params.Watcher.CounterCapacity
	if watcherCap <= 0 {
		watcherCap = defaultWatcherCapacity
	}

	return &Engine{
		graph:     graph,
		cover:     cover,
		params:    params,
		counters:  counters,
		memo:      lru.New[memoKey, *hll.Array](lru.WithMaxEntries[memoKey, *hll.Array](memoCap)),
		watcher:   topnode.New(watcherCap),
		lastFired: time.Now(),
	}, nil
}

// WithObservability attaches metric/tracing instruments, returning e for
// chaining at construction sites.
func (e *Engine) WithObservability(metrics *observability.EngineMetrics, tracer trace.Tracer) *Engine {
	e.metrics = metrics
	e.tracer = tracer

	return e
}

// SetWatcherCallback registers the Top-Node Watcher's firing callback,
// replacing any previously registered one.
func (e *Engine) SetWatcherCallback(fn WatcherCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.watcherFn = fn
}

// WatcherSnapshot returns the Top-Node Watcher's currently accumulated
// (unfired) entries without clearing them.
func (e *Engine) WatcherSnapshot() []topnode.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.watcher.Entries()
}

// NumNodes returns the engine's owned graph's current vertex count.
func (e *Engine) NumNodes() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.graph.NumNodes()
}

// VertexCoverSize returns |V|.
func (e *Engine) VertexCoverSize() int {
	return e.cover.VertexCoverSize()
}

// MatchingSize returns |M|.
func (e *Engine) MatchingSize() int {
	return e.cover.MatchingSize()
}

// Count returns the HyperLogLog estimate of |B(v,h)|, the number of
// distinct vertices reachable from v within h hops.
func (e *Engine) Count(v int64, h int) (uint64, error) {
	if h < 0 || h > e.params.H {
		return 0, fmt.Errorf("hyperball: hop %d out of [0,%d]: %w", h, e.params.H, hberrors.ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.countLocked(v, h)
}

func (e *Engine) countLocked(v int64, h int) (uint64, error) {
	arr, idx, err := e.counterForLocked(v, h)
	if err != nil {
		return 0, err
	}

	c, err := arr.Count(idx)
	if err != nil {
		return 0, fmt.Errorf("hyperball: count(%d,%d): %w", v, h, err)
	}

	return uint64(math.Round(c)), nil
}

// counterForLocked returns the (array, index) holding v's estimate at
// hop h: C_0 is always the permanent identity set; a vertex-cover member
// reads its dense C_h directly; everyone else gets a scratch counter
// built by unioning {v} with each successor's transitively-recomputed,
// memoised counter at h-1. Callers must hold mu.
func (e *Engine) counterForLocked(v int64, h int) (*hll.Array, uint64, error) {
	if h == 0 {
		return e.counters[0], uint64(v), nil
	}

	if e.cover.IsInVertexCover(v) {
		return e.counters[h], uint64(v), nil
	}

	key := memoKey{vertex: v, hop: h}
	if cached, ok := e.memo.Get(key); ok {
		return cached, 0, nil
	}

	scratch, err := hll.New(e.hllParams(), 1)
	if err != nil {
		return nil, 0, fmt.Errorf("hyperball: allocate scratch for %d: %w", v, err)
	}

	if err := scratch.Add(0, uint64(v)); err != nil {
		return nil, 0, fmt.Errorf("hyperball: seed scratch for %d: %w", v, err)
	}

	it := e.graph.Successors(v)
	for w := it.NextLong(); w != graphmodel.EndOfSuccessors; w = it.NextLong() {
		wArr, wIdx, err := e.counterForLocked(w, h-1)
		if err != nil {
			return nil, 0, err
		}

		if err := scratch.Union(wArr, 0, wIdx); err != nil {
			return nil, 0, fmt.Errorf("hyperball: union successor %d into scratch for %d: %w", w, v, err)
		}
	}

	e.memo.Put(key, scratch)

	return scratch, 0, nil
}

func (e *Engine) hllParams() hll.Params {
	return hll.Params{LogM: e.params.LogM, RegisterSize: e.params.RegisterSize, Seed: e.params.Seed}
}

// AddEdges inserts a batch of edges, forwards each to the vertex cover,
// recomputes every affected vertex's counters at every hop in increasing
// h order, evaluates the Top-Node Watcher against the batch's touched
// vertices, and records batch metrics.
func (e *Engine) AddEdges(ctx context.Context, batch []graphmodel.Edge) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if e.tracer != nil {
		var span trace.Span

		ctx, span = e.tracer.Start(ctx, "hyperball.AddEdges",
			trace.WithAttributes(attribute.Int("hyperball.batch_size", len(batch))))
		defer span.End()
	}

	touched := touchedVertices(batch)

	countBefore := make(map[int64]uint64, len(touched))

	for _, v := range touched {
		c, err := e.countLocked(v, e.params.H)
		if err != nil {
			return err
		}

		if c == 0 {
			c = 1
		}

		countBefore[v] = c
	}

	affectedTotal := make(map[int64]struct{})

	for _, edge := range batch {
		prevN := e.graph.NumNodes()
		e.graph.AddEdge(edge)
		newN := e.graph.NumNodes()

		if newN > prevN {
			if err := e.growCounters(prevN, newN); err != nil {
				return err
			}
		}

		for v := range e.cover.InsertEdge(edge) {
			affectedTotal[v] = struct{}{}
		}
	}

	sources := make([]int64, 0, len(affectedTotal))
	for v := range affectedTotal {
		sources = append(sources, v)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	for h := 1; h <= e.params.H; h++ {
		if err := e.recomputeHop(h, sources); err != nil {
			return err
		}
	}

	e.memo.Clear()

	fires, err := e.evaluateWatcher(touched, countBefore)
	if err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.RecordBatch(ctx, observability.EngineStats{
			VertexCoverSize:  int64(e.cover.VertexCoverSize()),
			MatchingSize:     int64(e.cover.MatchingSize()),
			WatcherFires:     fires,
			AffectedVertices: int64(len(sources)),
			BatchDuration:    time.Since(start),
		})
	}

	return nil
}

// growCounters grows every counter array and seeds C_0's identity set
// for newly observed vertex ids [prevN, newN). Callers must hold mu.
func (e *Engine) growCounters(prevN, newN int64) error {
	delta := newN - prevN

	for _, arr := range e.counters {
		if err := arr.AddCounters(delta); err != nil {
			return fmt.Errorf("hyperball: grow counters: %w", err)
		}
	}

	for v := prevN; v < newN; v++ {
		if err := e.counters[0].Add(uint64(v), uint64(v)); err != nil {
			return fmt.Errorf("hyperball: seed identity set for %d: %w", v, err)
		}
	}

	return nil
}

// recomputeHop recomputes C_h[v] for every v in sources, batching
// successor traversal across up to msbfs.MaxSources sources per pass so
// several recomputations share one successor-list walk. Callers must
// hold mu.
func (e *Engine) recomputeHop(h int, sources []int64) error {
	prev := e.counters[h-1]
	cur := e.counters[h]

	for start := 0; start < len(sources); start += msbfs.MaxSources {
		end := start + msbfs.MaxSources
		if end > len(sources) {
			end = len(sources)
		}

		chunk := sources[start:end]

		for _, v := range chunk {
			if err := cur.Union(prev, uint64(v), uint64(v)); err != nil {
				return fmt.Errorf("hyperball: recompute hop %d self-term: %w", h, err)
			}
		}

		var unionErr error

		err := msbfs.RunPass(e.graph, chunk, 1, msbfs.VisitorFunc(
			func(depth int, vertex int64, reached uint64, _ func(uint64)) {
				if depth != 1 || unionErr != nil {
					return
				}

				for i, src := range chunk {
					if reached&(uint64(1)<<uint(i)) == 0 {
						continue
					}

					if err := cur.Union(prev, uint64(src), uint64(vertex)); err != nil {
						unionErr = err
					}
				}
			}))
		if err != nil {
			return fmt.Errorf("hyperball: recompute hop %d: %w", h, err)
		}

		if unionErr != nil {
			return fmt.Errorf("hyperball: recompute hop %d: %w", h, unionErr)
		}
	}

	return nil
}

// evaluateWatcher compares each touched vertex's before/after count at
// hop H, inserts the qualifying ones into the descending set, and fires
// the registered callback if due. Callers must hold mu.
func (e *Engine) evaluateWatcher(touched []int64, countBefore map[int64]uint64) (int64, error) {
	for _, v := range touched {
		after, err := e.countLocked(v, e.params.H)
		if err != nil {
			return 0, err
		}

		before := countBefore[v]
		growth := (float64(after) - float64(before)) / float64(before)

		if growth >= e.params.Watcher.PercentageChange && after >= e.params.Watcher.MinNodeCount {
			e.watcher.Insert(float64(after)/float64(before), v)
		}
	}

	if e.watcher.Len() == 0 {
		return 0, nil
	}

	if time.Since(e.lastFired).Milliseconds() < e.params.Watcher.UpdateIntervalMs {
		return 0, nil
	}

	var fires int64

	if e.watcherFn != nil {
		e.watcherFn(e.watcher.Entries())
		fires = 1
	}

	e.watcher.Clear()
	e.lastFired = time.Now()

	return fires, nil
}

// touchedVertices returns batch's distinct endpoint vertices in
// first-seen order.
func touchedVertices(batch []graphmodel.Edge) []int64 {
	seen := make(map[int64]struct{}, len(batch)*2)

	out := make([]int64, 0, len(batch)*2)

	for _, e := range batch {
		if _, ok := seen[e.From]; !ok {
			seen[e.From] = struct{}{}

			out = append(out, e.From)
		}

		if _, ok := seen[e.To]; !ok {
			seen[e.To] = struct{}{}

			out = append(out, e.To)
		}
	}

	return out
}

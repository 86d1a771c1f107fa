package graphmodel

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

// MutableGraph is an in-memory directed graph, adjacency-list backed,
// generalised from the teacher's pkg/toposort.IntGraph
// (EnsureCapacity-on-demand, per-node successor slices) to int64 vertex
// ids, arc counting, deletion, and transpose. It implements both
// Provider and RandomAccessProvider.
type MutableGraph struct {
	mu      sync.RWMutex
	adj     [][]int64
	numArcs int64
}

// NewMutableGraph returns an empty graph.
func NewMutableGraph() *MutableGraph {
	return &MutableGraph{adj: make([][]int64, 0)}
}

// ensureCapacity grows adj so vertex ids up to n-1 are addressable.
// Callers must hold mu for writing.
func (g *MutableGraph) ensureCapacity(n int64) {
	if n <= int64(len(g.adj)) {
		return
	}

	grown := make([][]int64, n)
	copy(grown, g.adj)
	g.adj = grown
}

// AddNode ensures vertex v is addressable, implicitly adding every id
// below it. Vertex ids are never reassigned once observed.
func (g *MutableGraph) AddNode(v int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureCapacity(v + 1)
}

// AddEdge adds the directed edge e, ignoring it if already present
// (self-loops are allowed). Returns true if a new arc was added.
func (g *MutableGraph) AddEdge(e Edge) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.addEdgeLocked(e)
}

func (g *MutableGraph) addEdgeLocked(e Edge) bool {
	top := e.From
	if e.To > top {
		top = e.To
	}

	g.ensureCapacity(top + 1)

	if slices.Contains(g.adj[e.From], e.To) {
		return false
	}

	g.adj[e.From] = append(g.adj[e.From], e.To)
	g.numArcs++

	return true
}

// AddEdges adds a batch of edges, returning the number of distinct new
// arcs added.
func (g *MutableGraph) AddEdges(edges []Edge) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0

	for _, e := range edges {
		if g.addEdgeLocked(e) {
			added++
		}
	}

	return added
}

// DeleteEdge removes the directed edge e if present, returning whether
// it existed.
func (g *MutableGraph) DeleteEdge(e Edge) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e.From >= int64(len(g.adj)) {
		return false
	}

	succ := g.adj[e.From]
	for i, s := range succ {
		if s == e.To {
			g.adj[e.From] = slices.Delete(succ, i, i+1)
			g.numArcs--

			return true
		}
	}

	return false
}

// NumNodes returns max(v)+1 over every id ensured so far.
func (g *MutableGraph) NumNodes() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return int64(len(g.adj))
}

// NumArcs returns the number of distinct (from,to) pairs currently present.
func (g *MutableGraph) NumArcs() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.numArcs
}

// Outdegree returns v's number of out-neighbours, or 0 if v is out of range.
func (g *MutableGraph) Outdegree(v int64) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if v < 0 || v >= int64(len(g.adj)) {
		return 0
	}

	return int64(len(g.adj[v]))
}

// HasArc reports whether the edge (from,to) is currently present,
// satisfying RandomAccessProvider.
func (g *MutableGraph) HasArc(from, to int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if from < 0 || from >= int64(len(g.adj)) {
		return false
	}

	return slices.Contains(g.adj[from], to)
}

// sliceSuccessors is a SuccessorIterator over a static snapshot of one
// vertex's adjacency slice.
type sliceSuccessors struct {
	succ []int64
	pos  int
}

func (it *sliceSuccessors) NextLong() int64 {
	if it.pos >= len(it.succ) {
		return EndOfSuccessors
	}

	v := it.succ[it.pos]
	it.pos++

	return v
}

// Successors returns a lazy iterator over v's out-neighbours, snapshot
// at call time so concurrent mutation never corrupts an in-flight walk.
func (g *MutableGraph) Successors(v int64) SuccessorIterator {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if v < 0 || v >= int64(len(g.adj)) {
		return &sliceSuccessors{}
	}

	return &sliceSuccessors{succ: slices.Clone(g.adj[v])}
}

// graphNodeIterator is a forward cursor over vertex ids in ascending
// order, enforcing the "successors at most once per position, never
// before the first advance" contract from spec.md §4.C.
type graphNodeIterator struct {
	g        *MutableGraph
	cur      int64
	started  bool
	consumed bool
}

func (it *graphNodeIterator) HasNext() bool {
	n := it.g.NumNodes()

	next := it.cur
	if it.started {
		next++
	}

	return next < n
}

func (it *graphNodeIterator) NextLong() (int64, error) {
	if it.started {
		it.cur++
	} else {
		it.started = true
	}

	if it.cur >= it.g.NumNodes() {
		return 0, fmt.Errorf("graphmodel: nodeIterator: advanced past end: %w", hberrors.ErrInvalidState)
	}

	it.consumed = false

	return it.cur, nil
}

func (it *graphNodeIterator) Outdegree() (int64, error) {
	if !it.started {
		return 0, fmt.Errorf("graphmodel: nodeIterator: outdegree before first advance: %w", hberrors.ErrInvalidState)
	}

	return it.g.Outdegree(it.cur), nil
}

func (it *graphNodeIterator) Successors() (SuccessorIterator, error) {
	if !it.started {
		return nil, fmt.Errorf("graphmodel: nodeIterator: successors before first advance: %w", hberrors.ErrInvalidState)
	}

	if it.consumed {
		return nil, fmt.Errorf("graphmodel: nodeIterator: successors already consumed at this position: %w", hberrors.ErrInvalidState)
	}

	it.consumed = true

	return it.g.Successors(it.cur), nil
}

// NodeIterator returns a forward cursor starting just before `from`.
func (g *MutableGraph) NodeIterator(from int64) NodeIterator {
	return &graphNodeIterator{g: g, cur: from - 1}
}

// IterateAllEdges visits every (from,to) pair currently present, in
// ascending from-id order, stopping early if visit returns false.
func (g *MutableGraph) IterateAllEdges(visit func(Edge) bool) {
	g.mu.RLock()
	snapshot := make([][]int64, len(g.adj))

	for i, succ := range g.adj {
		snapshot[i] = slices.Clone(succ)
	}
	g.mu.RUnlock()

	for from, succ := range snapshot {
		for _, to := range succ {
			if !visit(Edge{From: int64(from), To: to}) {
				return
			}
		}
	}
}

// Transpose returns a fresh graph with every edge reversed.
func (g *MutableGraph) Transpose() *MutableGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t := NewMutableGraph()
	t.ensureCapacity(int64(len(g.adj)))

	for from, succ := range g.adj {
		for _, to := range succ {
			t.addEdgeLocked(Edge{From: to, To: int64(from)})
		}
	}

	return t
}

// Copy returns an independent deep copy of the graph.
func (g *MutableGraph) Copy() *MutableGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c := &MutableGraph{
		adj:     make([][]int64, len(g.adj)),
		numArcs: g.numArcs,
	}

	for i, succ := range g.adj {
		c.adj[i] = slices.Clone(succ)
	}

	return c
}

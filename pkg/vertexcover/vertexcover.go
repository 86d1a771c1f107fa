// Package vertexcover maintains a dynamic 2-approximate vertex cover and
// maximal matching over a directed graph, using the "simple" scheme of
// Ivković and Lloyd: insertion extends the matching greedily, deletion
// repairs it by scanning the deleted endpoints' outgoing and (via a
// transpose) incoming edges for a replacement match.
package vertexcover

import (
	"fmt"
	"sync"

	"github.com/Sumatoshi-tech/hyperball/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

// growthNumerator and growthDenominator express the matching/cover
// arrays' 1.1x geometric growth policy as an exact rational, the same
// compounding scheme pkg/hll uses for its counter chunks.
const (
	growthNumerator   = 11
	growthDenominator = 10

	unmatched = -1
)

// Status describes how a vertex's membership changed as the result of a
// DeleteEdge reconciliation.
type Status int

const (
	// Added means the vertex entered the cover as part of repairing the
	// matching after a deletion.
	Added Status = iota
	// Removed means the vertex left the cover and nothing restored it.
	Removed
)

// Affected maps vertex id to how its cover membership changed. Callers
// use it as the authoritative list of vertices whose HyperBall counters
// (h > 0) must be regenerated.
type Affected map[int64]Status

// Cover maintains a maximal matching M and its endpoint set V, a
// 2-approximate vertex cover of whatever graph produced the inserted and
// deleted edges.
type Cover struct {
	mu       sync.Mutex
	graph    graphmodel.Provider
	matching []int64
	inCover  []bool
	size     int64
	matches  int
}

// New returns an empty Cover that will scan graph's successors when
// repairing the matching after a deletion (graph must be the same
// logical graph the edges being inserted/deleted belong to).
func New(graph graphmodel.Provider) *Cover {
	return &Cover{graph: graph}
}

// nextLimit returns the smallest capacity >= want, stepping the current
// limit by 1.1x compounded (floor) until it clears want.
func nextLimit(limit, want int64) int64 {
	if limit == 0 {
		limit = 1
	}

	for limit < want {
		next := limit * growthNumerator / growthDenominator
		if next <= limit {
			next = limit + 1
		}

		limit = next
	}

	return limit
}

// ensureCapacity grows matching and inCover so ids up to n-1 are
// addressable, filling new matching slots with the unmatched sentinel.
// Callers must hold mu.
func (c *Cover) ensureCapacity(n int64) {
	if n <= c.size {
		return
	}

	newSize := nextLimit(c.size, n)

	grownMatching := make([]int64, newSize)
	for i := range grownMatching {
		grownMatching[i] = unmatched
	}

	copy(grownMatching, c.matching)
	c.matching = grownMatching

	grownCover := make([]bool, newSize)
	copy(grownCover, c.inCover)
	c.inCover = grownCover

	c.size = newSize
}

// IsInVertexCover reports whether id is currently a cover endpoint. An
// id at or beyond the current capacity returns false without growing.
func (c *Cover) IsInVertexCover(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isInVertexCoverLocked(id)
}

func (c *Cover) isInVertexCoverLocked(id int64) bool {
	if id < 0 || id >= c.size {
		return false
	}

	return c.inCover[id]
}

// VertexCoverSize returns |V|.
func (c *Cover) VertexCoverSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0

	for _, in := range c.inCover {
		if in {
			n++
		}
	}

	return n
}

// MatchingSize returns |M|.
func (c *Cover) MatchingSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.matches
}

// match records (a,b) as a matched pair and brings both into the cover.
// Callers must hold mu.
func (c *Cover) match(a, b int64) {
	top := a
	if b > top {
		top = b
	}

	c.ensureCapacity(top + 1)

	c.matching[a] = b
	c.matching[b] = a
	c.inCover[a] = true
	c.inCover[b] = true
	c.matches++
}

// InsertEdge extends the matching with e if neither endpoint is already
// covered; otherwise it has no effect. Returns the set of vertices newly
// added to the cover.
func (c *Cover) InsertEdge(e graphmodel.Edge) Affected {
	c.mu.Lock()
	defer c.mu.Unlock()

	top := e.From
	if e.To > top {
		top = e.To
	}

	c.ensureCapacity(top + 1)

	if c.isInVertexCoverLocked(e.From) || c.isInVertexCoverLocked(e.To) {
		return Affected{}
	}

	c.match(e.From, e.To)

	return Affected{e.From: Added, e.To: Added}
}

// DeleteEdge removes e from the matching if present and repairs the
// cover by scanning the deleted endpoints' outgoing edges (via the
// graph supplied to New) and incoming edges (via transpose). transpose
// must be the reverse of the same graph; this is not checked, and only a
// nil transpose fails, with ErrMissingTranspose.
func (c *Cover) DeleteEdge(e graphmodel.Edge, transpose graphmodel.Provider) (Affected, error) {
	if transpose == nil {
		return nil, fmt.Errorf("vertexcover: deleteEdge: %w", hberrors.ErrMissingTranspose)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.From >= c.size || c.matching[e.From] != e.To {
		return Affected{}, nil
	}

	c.matching[e.From] = unmatched
	c.matching[e.To] = unmatched
	c.inCover[e.From] = false
	c.inCover[e.To] = false
	c.matches--

	var touched []int64

	touched = append(touched, c.checkOutgoing(e.From)...)

	if e.To != e.From {
		touched = append(touched, c.checkOutgoing(e.To)...)
	}

	touched = append(touched, c.checkIncoming(e.From, transpose)...)

	if e.To != e.From {
		touched = append(touched, c.checkIncoming(e.To, transpose)...)
	}

	touched = mapx.Unique(touched)

	removed := map[int64]bool{e.From: true, e.To: true}
	affected := Affected{}

	for _, v := range touched {
		if removed[v] {
			delete(removed, v)
		} else {
			affected[v] = Added
		}
	}

	for v := range removed {
		affected[v] = Removed
	}

	return affected, nil
}

// checkOutgoing scans endpoint's out-neighbours for the first one not
// already covered, matching them if found. Callers must hold mu.
func (c *Cover) checkOutgoing(endpoint int64) []int64 {
	if c.isInVertexCoverLocked(endpoint) {
		return nil
	}

	it := c.graph.Successors(endpoint)

	for {
		s := it.NextLong()
		if s == graphmodel.EndOfSuccessors {
			return nil
		}

		if !c.isInVertexCoverLocked(s) {
			c.match(endpoint, s)

			return []int64{endpoint, s}
		}
	}
}

// checkIncoming scans endpoint's in-neighbours (via transpose's
// successors) for the first one not already covered. Callers must hold
// mu.
func (c *Cover) checkIncoming(endpoint int64, transpose graphmodel.Provider) []int64 {
	if c.isInVertexCoverLocked(endpoint) {
		return nil
	}

	it := transpose.Successors(endpoint)

	for {
		n := it.NextLong()
		if n == graphmodel.EndOfSuccessors {
			return nil
		}

		if !c.isInVertexCoverLocked(n) {
			c.match(n, endpoint)

			return []int64{n, endpoint}
		}
	}
}

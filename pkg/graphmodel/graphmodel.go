// Package graphmodel defines the graph-provider capability the
// neighbourhood engine consumes, plus an in-memory mutable implementation
// of it.
package graphmodel

// EndOfSuccessors is the sentinel SuccessorIterator.NextLong returns once
// a vertex's out-neighbours are exhausted.
const EndOfSuccessors = -1

// Edge is an ordered pair of vertex ids. Self-loops are allowed;
// duplicate edges are ignored by anything that inserts them.
type Edge struct {
	From int64
	To   int64
}

// SuccessorIterator lazily yields a vertex's out-neighbours in some
// provider-consistent order, returning EndOfSuccessors once exhausted.
type SuccessorIterator interface {
	NextLong() int64
}

// NodeIterator is a forward cursor over a graph's vertex ids in
// ascending order. Successors may be requested at most once per
// position; requesting them before the first advance, or a second time
// at the same position, is an InvalidState failure.
type NodeIterator interface {
	HasNext() bool
	NextLong() (int64, error)
	Outdegree() (int64, error)
	Successors() (SuccessorIterator, error)
}

// Provider is an immutable snapshot view of a directed graph: the
// minimal capability set the neighbourhood engine requires.
type Provider interface {
	NumNodes() int64
	NumArcs() int64
	Outdegree(v int64) int64
	Successors(v int64) SuccessorIterator
	NodeIterator(from int64) NodeIterator
	IterateAllEdges(visit func(Edge) bool)
}

// RandomAccessProvider adds a cheap arc-membership test to Provider.
// The vertex cover's incoming-edge scan uses it when available and
// falls back to a full successor scan otherwise.
type RandomAccessProvider interface {
	Provider
	HasArc(from, to int64) bool
}

// Package topnode implements the Top-Node Watcher's sorted (ratio,
// vertex) multiset: an adaptation of the teacher's pkg/rbtree augmented
// red-black tree, quantising ratio into the tree's native uint32 Key so
// the structure never needs a bespoke comparator.
package topnode

import (
	"github.com/Sumatoshi-tech/hyperball/pkg/rbtree"
	"github.com/Sumatoshi-tech/hyperball/pkg/safeconv"
)

const (
	// ratioQuantBits is how many of Key's 32 bits encode the quantised
	// ratio; the remaining bits disambiguate vertices sharing a bucket.
	ratioQuantBits = 12
	ratioQuantMax  = (uint32(1) << ratioQuantBits) - 1

	vertexFragmentBits = 32 - ratioQuantBits
	vertexFragmentMask = (uint32(1) << vertexFragmentBits) - 1

	// maxRatio bounds the quantiser's input domain. Ratios above it
	// collapse into the top bucket — an accepted approximation, since
	// the watcher only needs a capped, roughly-ordered top set, not an
	// exact total order over arbitrarily large growth factors.
	maxRatio = 64.0
)

// Entry is one (ratio, vertex) pair read back out of a Tree.
type Entry struct {
	Ratio  float64
	Vertex int64
}

// Tree is a capacity-capped sorted multiset of (ratio, vertex) pairs,
// iterable in descending ratio order. Ascending tree-Key order is made
// to mean descending ratio order by inverting the quantised ratio into
// Key's high bits; the exact ratio (pre-quantisation) is kept in a
// side map so Entries reports it losslessly.
type Tree struct {
	alloc    *rbtree.Allocator
	tree     *rbtree.RBTree
	ratios   map[int64]float64
	capacity int
}

// New returns an empty Tree capped at capacity entries.
func New(capacity int) *Tree {
	alloc := rbtree.NewAllocator()

	return &Tree{
		alloc:    alloc,
		tree:     rbtree.NewRBTree(alloc),
		ratios:   make(map[int64]float64),
		capacity: capacity,
	}
}

func quantizeRatio(ratio float64) uint32 {
	if ratio < 0 {
		ratio = 0
	}

	if ratio > maxRatio {
		ratio = maxRatio
	}

	return uint32(ratio / maxRatio * float64(ratioQuantMax))
}

// encodeKey inverts the quantised ratio (so ascending Key order is
// descending ratio order) and folds in a vertex fragment so two
// vertices landing in the same ratio bucket still get distinct keys,
// up to aliasing beyond vertexFragmentBits worth of ids.
func encodeKey(ratio float64, vertex int64) uint32 {
	inverted := ratioQuantMax - quantizeRatio(ratio)
	fragment := safeconv.MustIntToUint32(int(vertex)) & vertexFragmentMask

	return (inverted << vertexFragmentBits) | fragment
}

// Len returns the number of entries currently stored.
func (t *Tree) Len() int {
	return t.tree.Len()
}

// Insert adds (ratio, vertex), evicting the current lowest-ratio entry
// first if the tree is already at capacity. Returns false if the
// computed key collides with an existing entry (ratio-bucket aliasing).
func (t *Tree) Insert(ratio float64, vertex int64) bool {
	if t.tree.Len() >= t.capacity {
		if worst := t.tree.Max(); !worst.Limit() && !worst.NegativeLimit() {
			t.tree.DeleteWithKey(worst.Item().Key)
			delete(t.ratios, int64(worst.Item().Value))
		}
	}

	key := encodeKey(ratio, vertex)

	ok, _ := t.tree.Insert(rbtree.Item{Key: key, Value: safeconv.MustIntToUint32(int(vertex))})
	if ok {
		t.ratios[vertex] = ratio
	}

	return ok
}

// Entries returns every (ratio, vertex) pair currently stored, in
// descending ratio order.
func (t *Tree) Entries() []Entry {
	entries := make([]Entry, 0, t.tree.Len())

	for it := t.tree.Min(); !it.Limit(); it = it.Next() {
		vertex := int64(it.Item().Value)
		entries = append(entries, Entry{Ratio: t.ratios[vertex], Vertex: vertex})
	}

	return entries
}

// Clear empties the tree, ready for the next watcher firing window.
func (t *Tree) Clear() {
	t.tree.Erase()
	t.ratios = make(map[int64]float64)
}

package graphmodel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

func triangle() *graphmodel.MutableGraph {
	g := graphmodel.NewMutableGraph()
	g.AddEdge(graphmodel.Edge{From: 0, To: 1})
	g.AddEdge(graphmodel.Edge{From: 1, To: 2})
	g.AddEdge(graphmodel.Edge{From: 2, To: 0})

	return g
}

func TestAddEdge_DuplicateIgnored(t *testing.T) {
	t.Parallel()

	g := graphmodel.NewMutableGraph()
	assert.True(t, g.AddEdge(graphmodel.Edge{From: 0, To: 1}))
	assert.False(t, g.AddEdge(graphmodel.Edge{From: 0, To: 1}))
	assert.Equal(t, int64(1), g.NumArcs())
}

func TestAddEdge_SelfLoopAllowed(t *testing.T) {
	t.Parallel()

	g := graphmodel.NewMutableGraph()
	assert.True(t, g.AddEdge(graphmodel.Edge{From: 5, To: 5}))
	assert.Equal(t, int64(1), g.Outdegree(5))
}

func TestNumNodes_DenseFromMaxID(t *testing.T) {
	t.Parallel()

	g := triangle()
	assert.Equal(t, int64(3), g.NumNodes())
}

func TestDeleteEdge(t *testing.T) {
	t.Parallel()

	g := triangle()
	assert.True(t, g.DeleteEdge(graphmodel.Edge{From: 0, To: 1}))
	assert.False(t, g.DeleteEdge(graphmodel.Edge{From: 0, To: 1}))
	assert.Equal(t, int64(2), g.NumArcs())
	assert.Equal(t, int64(0), g.Outdegree(0))
}

func TestSuccessors_SentinelAtEnd(t *testing.T) {
	t.Parallel()

	g := triangle()
	it := g.Successors(0)
	assert.Equal(t, int64(1), it.NextLong())
	assert.Equal(t, int64(graphmodel.EndOfSuccessors), it.NextLong())
}

func TestHasArc(t *testing.T) {
	t.Parallel()

	g := triangle()
	assert.True(t, g.HasArc(0, 1))
	assert.False(t, g.HasArc(1, 0))
}

func TestNodeIterator_WalksInOrder(t *testing.T) {
	t.Parallel()

	g := triangle()
	it := g.NodeIterator(0)

	var visited []int64

	for it.HasNext() {
		v, err := it.NextLong()
		require.NoError(t, err)

		visited = append(visited, v)

		deg, err := it.Outdegree()
		require.NoError(t, err)
		assert.Equal(t, int64(1), deg)

		succ, err := it.Successors()
		require.NoError(t, err)
		assert.NotEqual(t, int64(graphmodel.EndOfSuccessors), succ.NextLong())
	}

	assert.Equal(t, []int64{0, 1, 2}, visited)
}

func TestNodeIterator_SuccessorsBeforeAdvance_InvalidState(t *testing.T) {
	t.Parallel()

	g := triangle()
	it := g.NodeIterator(0)

	_, err := it.Successors()
	require.Error(t, err)
	assert.True(t, errors.Is(err, hberrors.ErrInvalidState))
}

func TestNodeIterator_SuccessorsConsumedOnce(t *testing.T) {
	t.Parallel()

	g := triangle()
	it := g.NodeIterator(0)

	_, err := it.NextLong()
	require.NoError(t, err)

	_, err = it.Successors()
	require.NoError(t, err)

	_, err = it.Successors()
	require.Error(t, err)
	assert.True(t, errors.Is(err, hberrors.ErrInvalidState))
}

func TestTranspose(t *testing.T) {
	t.Parallel()

	g := triangle()
	tr := g.Transpose()

	assert.True(t, tr.HasArc(1, 0))
	assert.True(t, tr.HasArc(2, 1))
	assert.True(t, tr.HasArc(0, 2))
	assert.False(t, tr.HasArc(0, 1))
}

func TestCopy_IsIndependent(t *testing.T) {
	t.Parallel()

	g := triangle()
	c := g.Copy()

	c.AddEdge(graphmodel.Edge{From: 0, To: 2})
	assert.True(t, c.HasArc(0, 2))
	assert.False(t, g.HasArc(0, 2))
}

func TestIterateAllEdges_VisitsEveryArc(t *testing.T) {
	t.Parallel()

	g := triangle()

	var edges []graphmodel.Edge

	g.IterateAllEdges(func(e graphmodel.Edge) bool {
		edges = append(edges, e)
		return true
	})

	assert.Len(t, edges, 3)
}

func TestIterateAllEdges_StopsEarly(t *testing.T) {
	t.Parallel()

	g := triangle()

	count := 0

	g.IterateAllEdges(func(graphmodel.Edge) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count)
}

func TestAddEdges_ReturnsDistinctCount(t *testing.T) {
	t.Parallel()

	g := graphmodel.NewMutableGraph()
	added := g.AddEdges([]graphmodel.Edge{
		{From: 0, To: 1},
		{From: 0, To: 1},
		{From: 1, To: 2},
	})

	assert.Equal(t, 2, added)
}

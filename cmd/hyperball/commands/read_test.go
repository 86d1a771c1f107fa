package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
)

func sampleReadGraph() *graphmodel.MutableGraph {
	g := graphmodel.NewMutableGraph()
	g.AddEdge(graphmodel.Edge{From: 0, To: 1})
	g.AddEdge(graphmodel.Edge{From: 0, To: 2})
	g.AddEdge(graphmodel.Edge{From: 1, To: 2})

	return g
}

func TestReadCommand_LimitsToRequestedNodeCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "g")
	require.NoError(t, graphio.WriteCompressed(sampleReadGraph(), base))

	cmd := NewReadCommand()
	require.NoError(t, cmd.Flags().Set("path", base))
	require.NoError(t, cmd.Flags().Set("n", "1"))
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestReadCommand_WithSuccessorsFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "g")
	require.NoError(t, graphio.WriteCompressed(sampleReadGraph(), base))

	cmd := NewReadCommand()
	require.NoError(t, cmd.Flags().Set("path", base))
	require.NoError(t, cmd.Flags().Set("e", "true"))
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestFormatSuccessors_JoinsWithCommas(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "g")
	require.NoError(t, graphio.WriteCompressed(sampleReadGraph(), base))

	got, err := graphio.ReadCompressed(base)
	require.NoError(t, err)

	it := got.NodeIterator(0)
	require.True(t, it.HasNext())

	v, err := it.NextLong()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	succIt, err := it.Successors()
	require.NoError(t, err)
	assert.Equal(t, "1,2", formatSuccessors(succIt))
}

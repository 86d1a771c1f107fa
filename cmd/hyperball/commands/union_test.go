package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
)

func TestUnionCommand_MergesEdgeSets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	g1 := graphmodel.NewMutableGraph()
	g1.AddEdge(graphmodel.Edge{From: 0, To: 1})

	g2 := graphmodel.NewMutableGraph()
	g2.AddEdge(graphmodel.Edge{From: 1, To: 2})

	base1 := filepath.Join(dir, "a")
	base2 := filepath.Join(dir, "b")
	out := filepath.Join(dir, "out")

	require.NoError(t, graphio.WriteCompressed(g1, base1))
	require.NoError(t, graphio.WriteCompressed(g2, base2))

	cmd := NewUnionCommand()
	require.NoError(t, cmd.Flags().Set("w", "true"))
	require.NoError(t, cmd.RunE(cmd, []string{base1, base2, out}))

	got, err := graphio.ReadCompressed(out)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.NumArcs())
}

func TestUnionCommand_RejectsWrongArgCount(t *testing.T) {
	t.Parallel()

	cmd := NewUnionCommand()
	assert.Error(t, cmd.Args(cmd, []string{"only-one"}))
}

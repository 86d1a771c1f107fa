package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
)

func TestHistogramBucket_ZeroFallsInFirstBucket(t *testing.T) {
	t.Parallel()

	low, high := histogramBucket(0)
	assert.Equal(t, 0, low)
	assert.Equal(t, 1, high)
}

func TestHistogramBucket_PowersOfTwo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		count    int
		wantLow  int
		wantHigh int
	}{
		{1, 1, 2},
		{3, 2, 4},
		{4, 4, 8},
		{9, 8, 16},
	}

	for _, tc := range cases {
		low, high := histogramBucket(tc.count)
		assert.Equal(t, tc.wantLow, low, "count=%d", tc.count)
		assert.Equal(t, tc.wantHigh, high, "count=%d", tc.count)
	}
}

func TestSampleSources_DeterministicForFixedSeed(t *testing.T) {
	t.Parallel()

	a := sampleSources(&splitmix64{state: 1}, 100, 10)
	b := sampleSources(&splitmix64{state: 1}, 100, 10)
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)
}

func TestSampleSources_CapsAtNodeCount(t *testing.T) {
	t.Parallel()

	got := sampleSources(&splitmix64{state: 42}, 3, 10)
	assert.Len(t, got, 3)
}

func TestReachCounts_MatchesKnownComponent(t *testing.T) {
	t.Parallel()

	g := graphmodel.NewMutableGraph()
	g.AddEdge(graphmodel.Edge{From: 0, To: 1})
	g.AddEdge(graphmodel.Edge{From: 1, To: 2})

	base := filepath.Join(t.TempDir(), "g")
	require.NoError(t, graphio.WriteCompressed(g, base))

	got, err := graphio.ReadCompressed(base)
	require.NoError(t, err)

	counts, err := reachCounts(got, []int64{0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, counts) // visitor fires for 0 itself, then 1, then 2
}

func TestBFSCommand_PropagatesMissingGraphError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cmd := NewBFSCommand()
	require.NoError(t, cmd.Flags().Set("path", filepath.Join(dir, "missing")))
	require.Error(t, cmd.RunE(cmd, nil))
}

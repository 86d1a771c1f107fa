package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/msbfs"
)

const defaultBFSSources = 1000

// splitmix64 is a fast, non-cryptographic PRNG for picking BFS sources,
// the same generator the teacher's pkg/alg/cuckoo uses in place of
// math/rand (gosec G404): reproducible across runs given --seed,
// without a claim of cryptographic strength this use doesn't need.
type splitmix64 struct {
	state uint64
}

const (
	splitmixInc    = 0x9e3779b97f4a7c15
	splitmixMix1   = 0xbf58476d1ce4e5b9
	splitmixMix2   = 0x94d049bb133111eb
	splitmixShift1 = 30
	splitmixShift2 = 27
	splitmixShift3 = 31
)

func (r *splitmix64) next() uint64 {
	r.state += splitmixInc

	z := r.state
	z = (z ^ (z >> splitmixShift1)) * splitmixMix1
	z = (z ^ (z >> splitmixShift2)) * splitmixMix2

	return z ^ (z >> splitmixShift3)
}

func (r *splitmix64) intn(n int64) int64 {
	if n <= 0 {
		return 0
	}

	return int64(r.next() % uint64(n)) //nolint:gosec // n is NumNodes, always small enough for this purpose
}

// sampleSources picks up to want distinct vertex ids in [0, n) using rng.
// When want is at least n, every id in [0, n) is returned. Otherwise
// collisions are retried for up to 2n attempts before giving up (returns
// whatever was collected so far).
func sampleSources(rng *splitmix64, n, want int64) []int64 {
	if want >= n {
		all := []int64{}
		for v := int64(0); v < n; v++ {
			all = append(all, v)
		}

		return all
	}

	seen := make(map[int64]struct{}, want)
	sources := make([]int64, 0, want)

	for attempts := int64(0); int64(len(sources)) < want && attempts < n*2; attempts++ {
		v := rng.intn(n)
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}

		sources = append(sources, v)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	return sources
}

// reachCounts runs msbfs.Run per MaxSources-wide chunk (mirroring the
// neighbourhood engine's manual chunking) and returns, for each source in
// sources' order, the number of distinct vertices reached within depth.
func reachCounts(provider *graphio.CompressedGraph, sources []int64, depth int) ([]int, error) {
	counts := make([]int, len(sources))

	for start := 0; start < len(sources); start += msbfs.MaxSources {
		end := start + msbfs.MaxSources
		if end > len(sources) {
			end = len(sources)
		}

		chunkStart := start
		chunk := sources[start:end]

		err := msbfs.Run(provider, chunk, depth, msbfs.VisitorFunc(
			func(_ int, _ int64, reached uint64, _ func(uint64)) {
				for i := range chunk {
					if reached&(uint64(1)<<uint(i)) != 0 {
						counts[chunkStart+i]++
					}
				}
			}))
		if err != nil {
			return nil, fmt.Errorf("bfs: %w", err)
		}
	}

	return counts, nil
}

// histogramBucket returns the power-of-two bucket label a reach count
// falls into: "[0,1)" for unreached sources, then "[1,2)", "[2,4)", etc.
func histogramBucket(count int) (low, high int) {
	if count == 0 {
		return 0, 1
	}

	low = 1
	for low*2 <= count {
		low *= 2
	}

	return low, low * 2
}

// NewBFSCommand runs multi-source BFS from random sources over a
// compressed graph and prints a component-size histogram.
func NewBFSCommand() *cobra.Command {
	var (
		path    string
		sources int
		depth   int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "bfs",
		Short: "Run MS-BFS from random sources and print a component-size histogram",
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := graphio.ReadCompressed(path)
			if err != nil {
				return fmt.Errorf("bfs: %w", err)
			}

			rng := &splitmix64{state: seed + 1}

			picked := sampleSources(rng, g.NumNodes(), int64(sources))

			counts, err := reachCounts(g, picked, depth)
			if err != nil {
				return err
			}

			buckets := make(map[int]int)

			for _, c := range counts {
				low, _ := histogramBucket(c)
				buckets[low]++
			}

			lows := make([]int, 0, len(buckets))
			for low := range buckets {
				lows = append(lows, low)
			}

			sort.Ints(lows)

			tbl := newTable(os.Stdout)
			tbl.AppendHeader(table.Row{"reach range", "sources"})

			for _, low := range lows {
				_, high := histogramBucket(low)
				tbl.AppendRow(table.Row{fmt.Sprintf("[%d,%d)", low, high), buckets[low]})
			}

			tbl.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "compressed graph basename (without extension)")
	cmd.Flags().IntVar(&sources, "sources", defaultBFSSources, "number of random BFS sources")
	cmd.Flags().IntVar(&depth, "depth", 5, "maximum BFS depth")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "source-sampling PRNG seed")
	cmd.MarkFlagRequired("path") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

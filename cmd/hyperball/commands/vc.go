package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
	"github.com/Sumatoshi-tech/hyperball/pkg/vertexcover"
)

// NewVCCommand computes a 2-approximate vertex cover and maximal
// matching over a compressed graph and prints a summary table.
func NewVCCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "vc",
		Short: "Compute a 2-approximate vertex cover over a compressed graph",
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := graphio.ReadCompressed(path)
			if err != nil {
				return fmt.Errorf("vc: %w", err)
			}

			mutable := graphmodel.NewMutableGraph()
			g.IterateAllEdges(func(e graphmodel.Edge) bool {
				mutable.AddEdge(e)

				return true
			})

			cover := vertexcover.New(mutable)

			mutable.IterateAllEdges(func(e graphmodel.Edge) bool {
				cover.InsertEdge(e)

				return true
			})

			tbl := newTable(os.Stdout)
			tbl.AppendHeader(table.Row{"nodes", "arcs", "|V| (cover)", "|M| (matching)"})
			tbl.AppendRow(table.Row{g.NumNodes(), g.NumArcs(), cover.VertexCoverSize(), cover.MatchingSize()})
			tbl.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "compressed graph basename (without extension)")
	cmd.MarkFlagRequired("path") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
)

// NewReadCommand reads a compressed graph and prints its first n nodes,
// optionally with their successor lists.
func NewReadCommand() *cobra.Command {
	var (
		path       string
		n          int
		printEdges bool
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a compressed graph and print its first N nodes",
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := graphio.ReadCompressed(path)
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}

			printInfo("nodes=%d arcs=%d\n", g.NumNodes(), g.NumArcs())

			tbl := newTable(os.Stdout)

			if printEdges {
				tbl.AppendHeader(table.Row{"node", "outdegree", "successors"})
			} else {
				tbl.AppendHeader(table.Row{"node", "outdegree"})
			}

			limit := int64(n)
			if limit > g.NumNodes() {
				limit = g.NumNodes()
			}

			it := g.NodeIterator(0)

			for i := int64(0); i < limit && it.HasNext(); i++ {
				v, err := it.NextLong()
				if err != nil {
					return fmt.Errorf("read: %w", err)
				}

				outdeg, err := it.Outdegree()
				if err != nil {
					return fmt.Errorf("read: %w", err)
				}

				if !printEdges {
					tbl.AppendRow(table.Row{v, outdeg})

					continue
				}

				succIt, err := it.Successors()
				if err != nil {
					return fmt.Errorf("read: %w", err)
				}

				tbl.AppendRow(table.Row{v, outdeg, formatSuccessors(succIt)})
			}

			tbl.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "compressed graph basename (without extension)")
	cmd.Flags().IntVar(&n, "n", 10, "number of nodes to print")
	cmd.Flags().BoolVar(&printEdges, "e", false, "also print each node's successors")
	cmd.MarkFlagRequired("path") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

func formatSuccessors(it graphmodel.SuccessorIterator) string {
	s := ""

	for v := it.NextLong(); v != graphmodel.EndOfSuccessors; v = it.NextLong() {
		if s != "" {
			s += ","
		}

		s += fmt.Sprintf("%d", v)
	}

	return s
}

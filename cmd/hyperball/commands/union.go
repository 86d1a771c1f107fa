package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
)

// NewUnionCommand merges two compressed graphs' edge sets into a third.
func NewUnionCommand() *cobra.Command {
	var printSummary bool

	cmd := &cobra.Command{
		Use:   "union <g1> <g2> <gout>",
		Short: "Union two compressed graphs into gout",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			g1, g2, gout := args[0], args[1], args[2]

			if err := graphio.Union(g1, g2, gout); err != nil {
				return fmt.Errorf("union %s %s: %w", g1, g2, err)
			}

			printOK("union: wrote %s\n", gout)

			if printSummary {
				merged, err := graphio.ReadCompressed(gout)
				if err != nil {
					return fmt.Errorf("union: read back %s: %w", gout, err)
				}

				printInfo("nodes=%d arcs=%d\n", merged.NumNodes(), merged.NumArcs())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&printSummary, "w", false, "print node/arc counts after writing gout")

	return cmd
}

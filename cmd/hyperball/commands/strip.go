package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
)

// NewStripCommand rewrites a compressed graph's .graph file without LZ4
// block compression.
func NewStripCommand() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Strip block-encoding from a compressed graph",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := graphio.Strip(in, out); err != nil {
				return fmt.Errorf("strip: %w", err)
			}

			printOK("strip: wrote %s.graph\n", out)

			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input compressed graph basename")
	cmd.Flags().StringVar(&out, "out", "", "output compressed graph basename")
	cmd.MarkFlagRequired("in")  //nolint:errcheck // cobra reports missing-flag usage errors itself
	cmd.MarkFlagRequired("out") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
)

// NewConvertCommand converts an arc-list file into the compressed
// three-file format.
func NewConvertCommand() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an arc-list to compressed form",
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := graphio.ReadArcList(in)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}

			if err := graphio.WriteCompressed(g, out); err != nil {
				return fmt.Errorf("convert: %w", err)
			}

			printOK("convert: wrote %s.{graph,offsets,properties}\n", out)
			printInfo("nodes=%s arcs=%s\n", humanize.Comma(g.NumNodes()), humanize.Comma(g.NumArcs()))

			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "arc-list input file")
	cmd.Flags().StringVar(&out, "out", "", "output compressed graph basename")
	cmd.MarkFlagRequired("in")  //nolint:errcheck // cobra reports missing-flag usage errors itself
	cmd.MarkFlagRequired("out") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

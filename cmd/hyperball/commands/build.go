package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphio"
)

// NewBuildCommand reads the arc-list at path and writes the compressed
// three-file format at path's basename (extension stripped).
func NewBuildCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a compressed graph from an arc-list file",
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := graphio.ReadArcList(path)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			basename := strings.TrimSuffix(path, filepath.Ext(path))

			if err := graphio.WriteCompressed(g, basename); err != nil {
				return fmt.Errorf("build: %w", err)
			}

			printOK("build: wrote %s.{graph,offsets,properties}\n", basename)
			printInfo("nodes=%s arcs=%s\n", humanize.Comma(g.NumNodes()), humanize.Comma(g.NumArcs()))

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "arc-list input file")
	cmd.MarkFlagRequired("path") //nolint:errcheck // cobra reports missing-flag usage errors itself

	return cmd
}

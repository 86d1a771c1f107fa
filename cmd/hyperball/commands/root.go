// Package commands implements the hyperball CLI's subcommand handlers,
// one per row of the compressed-graph tool surface: union, vc, bfs,
// build, strip, read, convert.
package commands

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a go-pretty table writer in StyleLight (thin
// box-drawing borders), the style the teacher's report formatter uses.
func newTable(out io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)

	return tbl
}

func printOK(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format, args...) //nolint:errcheck // best-effort status output
}

func printInfo(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(os.Stdout, format, args...) //nolint:errcheck // best-effort status output
}

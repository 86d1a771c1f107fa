// Package main provides the hyperball CLI entry point: a cobra binary
// exposing the compressed-graph tool surface (union, vc, bfs, build,
// strip, read, convert) over the neighbourhood engine's Graph I/O layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hyperball/cmd/hyperball/commands"
	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
	"github.com/Sumatoshi-tech/hyperball/pkg/observability"
	"github.com/Sumatoshi-tech/hyperball/pkg/version"
)

const (
	exitOK      = 0
	exitUsage   = 1
	exitIOError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version

	providers, err := observability.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hyperball: observability init: %v\n", err)

		return exitIOError
	}
	defer providers.Shutdown(context.Background()) //nolint:errcheck // best-effort flush on exit

	rootCmd := &cobra.Command{
		Use:           "hyperball",
		Short:         "Dynamic approximate neighbourhood engine CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewUnionCommand())
	rootCmd.AddCommand(commands.NewVCCommand())
	rootCmd.AddCommand(commands.NewBFSCommand())
	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(commands.NewStripCommand())
	rootCmd.AddCommand(commands.NewReadCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, hberrors.ErrIOError) {
			return exitIOError
		}

		return exitUsage
	}

	return exitOK
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "hyperball %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

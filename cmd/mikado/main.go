// Package main provides the mikado command-line tool: a cobra command
// tree (teacher already depends on cobra for its config subcommand, in
// cmd/vibe-vep/config.go) with "pick" (run the Superlocus pipeline) and
// "config" (show/get/set, adapted from the teacher's config.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mikado",
		Short: "mikado refines overlapping transcript annotations into loci",
		Long: `mikado groups candidate transcript annotations into Superloci, reduces
each to non-overlapping Subloci and Monosubloci, and picks the best-scoring
transcript per final Locus using a configurable scoring engine.`,
	}

	root.PersistentFlags().String("config", "", "path to a JSON or YAML configuration file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newPickCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("mikado version %s (%s) built %s\n", version, commit, date)
			return nil
		},
	}
}

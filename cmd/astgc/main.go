// ABOUTME: Entry point for the astgc diagnostic CLI
// ABOUTME: Wires the stress and analyze subcommands under one cobra root

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prateek/astgc"
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "astgc",
		Short:   "Exercise and inspect the expression-tree garbage collector",
		Version: astgc.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every collection cycle")
	root.AddCommand(newStressCmd(), newAnalyzeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	pnerrors "github.com/vango-dev/pagenav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "pagenav",
		Short: "Serve a deck of pages navigated by arrow keys and swipes",
		Long: `pagenav serves a sequence of pages and turns arrow keys and touch
swipes into page navigations.

Each page names its up, down, left and right neighbours. Arrow keys
go to the matching neighbour; horizontal swipes stand in for vertical
moves so they do not fight with scrolling: a left swipe goes down and
a right swipe goes up.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			handler, err := createHandler(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json, logfmt)")

	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		targetsCmd(),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if _, ok := err.(*pnerrors.PagenavError); ok {
			pnerrors.Fprint(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

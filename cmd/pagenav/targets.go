package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/keynav"
	"github.com/vango-dev/pagenav/pkg/nav"
)

func targetsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "targets <path>",
		Short: "Show where each key and swipe goes from a page",
		Long: `Print the destination of every arrow key and swipe direction for
one page of the deck, as a running session would route it.`,
		Example: `  pagenav targets /intro`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			api, err := s3Client(ctx, cfg)
			if err != nil {
				return err
			}
			deck, err := loadDeck(ctx, cfg, api)
			if err != nil {
				return err
			}
			page, err := deck.Page(args[0])
			if err != nil {
				return err
			}

			router := nav.NewRouter(page.Targets, nil, nav.WithReloadHint(cfg.Nav.ReloadHint))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INPUT\tRESOLVES TO\tDESTINATION")
			for _, d := range nav.Directions {
				code, _ := keynav.KeyCodeForDirection(d)
				printDecision(w, fmt.Sprintf("key %d (%s)", code, d), router.Decide(d, nav.SourceKey))
			}
			for _, d := range nav.Directions {
				printDecision(w, gesture.EventName(d), router.Decide(d, nav.SourceSwipe))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nhandled key codes: %v\n", page.HandledKeyCodes())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file or directory")
	return cmd
}

func printDecision(w *tabwriter.Writer, input string, dec nav.Decision) {
	dest := dec.URL
	if !dec.Found() {
		dest = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", input, dec.Resolved, dest)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and deck",
		Long: `Load the configuration, fetch the deck and validate every page
without starting the server.`,
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\033[32m✓\033[0m %s: %d pages\n", cfg.Path(), deck.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file or directory")
	return cmd
}

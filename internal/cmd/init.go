package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"transcriptrelay/internal/relay"
)

// ConfigFileName is the name of the config file written by init
const ConfigFileName = "relay.toml"

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var (
		webhookURL string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a watch directory",
		Long: `Initialize a watch directory for the relay: create the directory and its
processed/ archive subdirectory if missing, and write a relay.toml config
file next to it. Running init against directories that already exist
performs no destructive action.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := relay.DefaultWatchDir
			if len(args) == 1 {
				dir = args[0]
			}

			cfg := relay.DefaultConfig()
			cfg.WatchDir = dir
			if cmd.Flags().Changed("webhook") {
				cfg.WebhookURL = webhookURL
			}

			if err := os.MkdirAll(cfg.WatchDir, 0755); err != nil {
				return fmt.Errorf("create watch directory: %w", err)
			}
			if err := os.MkdirAll(cfg.ArchiveDir(), 0755); err != nil {
				return fmt.Errorf("create archive directory: %w", err)
			}

			configPath := filepath.Join(filepath.Dir(cfg.WatchDir), ConfigFileName)
			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Watch directory ready (config already exists at %s)\n", configPath)
				return nil
			}
			if err := cfg.SaveFile(configPath); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized watch directory %s\n", cfg.WatchDir)
			fmt.Fprintf(out, "Archive directory: %s\n", cfg.ArchiveDir())
			fmt.Fprintf(out, "Config written to %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&webhookURL, "webhook", "w", relay.DefaultWebhookURL, "webhook URL to record in the config file")

	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transcriptrelay/internal/relay"
	"transcriptrelay/internal/relay/pidfile"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		configPath string
		dir        string
		webhookURL string
		noStage    bool
		interval   int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and relay transcripts in foreground mode",
		Long: `Watch a directory for completed .txt transcript files and post each one
to the configured webhook endpoint. Delivered files are moved into the
processed/ subdirectory with a UTC timestamp suffix so they are never sent
twice. Files that fail to deliver stay in place and are retried every cycle.

Configuration can come from a TOML file (--config); command-line flags
override file values. The service runs until interrupted with Ctrl+C or
SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := relay.DefaultConfig()
			if configPath != "" {
				loaded, err := relay.LoadFile(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}

			flags := cmd.Flags()
			if flags.Changed("dir") {
				cfg.WatchDir = dir
			}
			if flags.Changed("webhook") {
				cfg.WebhookURL = webhookURL
			}
			if flags.Changed("interval") {
				cfg.PollIntervalSeconds = interval
			}
			if noStage {
				cfg.Stage = false
			}

			svc, err := relay.NewService(cfg)
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			pidPath, err := pidfile.Path()
			if err != nil {
				return err
			}
			if err := pidfile.WriteAt(pidPath, os.Getpid()); err != nil {
				return fmt.Errorf("write PID file: %w", err)
			}
			defer pidfile.RemoveAt(pidPath)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Starting transcript relay...")
			fmt.Fprintf(out, "Watching: %s\n", cfg.WatchDir)
			fmt.Fprintf(out, "Webhook:  %s\n", cfg.WebhookURL)
			fmt.Fprintln(out, "Press Ctrl+C to stop")
			fmt.Fprintln(out)

			return svc.Run(context.Background())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&dir, "dir", "d", relay.DefaultWatchDir, "directory to watch for transcript .txt files")
	cmd.Flags().StringVarP(&webhookURL, "webhook", "w", relay.DefaultWebhookURL, "webhook URL that receives the transcript payload")
	cmd.Flags().BoolVar(&noStage, "no-stage", false, "disable staging; the receiver persists actions directly")
	cmd.Flags().IntVar(&interval, "interval", relay.DefaultPollIntervalSeconds, "poll interval in seconds")

	return cmd
}

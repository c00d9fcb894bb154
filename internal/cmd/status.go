package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transcriptrelay/internal/relay"
	"transcriptrelay/internal/relay/pidfile"
	"transcriptrelay/internal/relay/status"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var (
		configPath string
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show relay status",
		Long: `Show whether a relay is running, a snapshot of pending and archived
transcript files, and delivery statistics parsed from today's log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := relay.DefaultConfig()
			if configPath != "" {
				loaded, err := relay.LoadFile(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("dir") {
				cfg.WatchDir = dir
			}

			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&dir, "dir", "d", relay.DefaultWatchDir, "watched directory")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *relay.Config) error {
	out := cmd.OutOrStdout()

	running := "stopped"
	if pid, err := pidfile.Read(); err == nil && pidfile.IsRunning(pid) {
		running = fmt.Sprintf("running (PID %d)", pid)
	}

	pending, err := countPending(cfg.WatchDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("list watch directory: %w", err)
	}
	archived, err := countArchived(cfg.ArchiveDir())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("list archive directory: %w", err)
	}

	stats, err := status.ParseTodayStats(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("parse log: %w", err)
	}

	rows := [][]string{
		{"State", running},
		{"Watch directory", cfg.WatchDir},
		{"Webhook", cfg.WebhookURL},
		{"Pending files", strconv.Itoa(pending)},
		{"Archived files", strconv.Itoa(archived)},
		{"Delivered today", strconv.Itoa(stats.Delivered)},
		{"Errors today", strconv.Itoa(stats.Errors)},
	}
	if stats.LastDelivered != nil {
		rows = append(rows, []string{
			"Last delivery",
			fmt.Sprintf("%s at %s", filepath.Base(stats.LastDelivered.Path), status.FormatTimestamp(stats.LastDelivered.Timestamp)),
		})
	}

	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
	return nil
}

// countPending counts .txt files directly in the watch root. The archive
// subdirectory is a directory entry and never counted.
func countPending(watchDir string) (int, error) {
	entries, err := os.ReadDir(watchDir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		count++
	}
	return count, nil
}

// countArchived counts files in the archive subdirectory.
func countArchived(archiveDir string) (int, error) {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}
	return count, nil
}

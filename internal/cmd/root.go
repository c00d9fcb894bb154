package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the relay CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Best-effort file-to-webhook transcript relay",
		Long:  "Relay watches a directory for completed meeting transcript files and posts each one to a webhook endpoint, archiving delivered files so they are not sent twice",
	}

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

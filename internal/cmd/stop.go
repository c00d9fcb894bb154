package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"transcriptrelay/internal/relay/pidfile"
)

// stopTimeout is the maximum time to wait for graceful shutdown before sending SIGKILL
const stopTimeout = 10 * time.Second

// ErrNotRunning indicates the relay is not running
var ErrNotRunning = errors.New("relay is not running")

// ErrStaleProcess indicates the PID file exists but the process is not running
var ErrStaleProcess = errors.New("stale PID file (process not running)")

// NewStopCmd creates the stop command
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running relay",
		Long: `Stop a running relay watch process.

Reads the PID from ~/.relay/relay.pid and sends SIGTERM for graceful
shutdown. If the process doesn't exit within 10 seconds, SIGKILL is sent to
force termination. The PID file is removed after the process exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd)
		},
	}
}

func runStop(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	pidPath, err := pidfile.Path()
	if err != nil {
		return err
	}

	pid, err := pidfile.ReadAt(pidPath)
	if err != nil {
		if errors.Is(err, pidfile.ErrNoPIDFile) {
			return ErrNotRunning
		}
		return err
	}

	if !pidfile.IsRunning(pid) {
		if err := pidfile.RemoveAt(pidPath); err != nil {
			fmt.Fprintf(out, "Warning: failed to remove stale PID file: %v\n", err)
		}
		return ErrStaleProcess
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	fmt.Fprintf(out, "Stopping relay (PID %d)...\n", pid)

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send SIGTERM: %w", err)
	}

	exited := waitForExit(pid, stopTimeout)

	if !exited {
		fmt.Fprintln(out, "Process did not exit gracefully, sending SIGKILL...")
		if err := process.Signal(syscall.SIGKILL); err != nil {
			if !errors.Is(err, os.ErrProcessDone) {
				return fmt.Errorf("send SIGKILL: %w", err)
			}
		}
		waitForExit(pid, 2*time.Second)
	}

	if err := pidfile.RemoveAt(pidPath); err != nil {
		fmt.Fprintf(out, "Warning: failed to remove PID file: %v\n", err)
	}

	fmt.Fprintln(out, "Relay stopped")
	return nil
}

// waitForExit polls until the process exits or timeout is reached
func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	pollInterval := 100 * time.Millisecond

	for time.Now().Before(deadline) {
		if !pidfile.IsRunning(pid) {
			return true
		}
		time.Sleep(pollInterval)
	}

	return false
}

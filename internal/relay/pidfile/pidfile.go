// Package pidfile provides PID file management for the relay watch process.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Common errors
var (
	ErrNoPIDFile       = errors.New("no PID file found")
	ErrInvalidPID      = errors.New("invalid PID in file")
	ErrProcessNotFound = errors.New("process not found")
)

const (
	pidFileName = "relay.pid"
	dirPerm     = 0755
	filePerm    = 0644
)

// Path returns the path to the PID file (~/.relay/relay.pid)
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".relay", pidFileName), nil
}

// WriteAt creates the PID file at the given path with the given process ID,
// creating parent directories if needed.
func WriteAt(path string, pid int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content := strconv.Itoa(pid) + "\n"
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}

	return nil
}

// Write creates the PID file at the default path.
func Write(pid int) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return WriteAt(path, pid)
}

// ReadAt reads the PID from the given file.
// Returns ErrNoPIDFile if the file doesn't exist.
// Returns ErrInvalidPID if the file contains invalid data.
func ReadAt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNoPIDFile
		}
		return 0, fmt.Errorf("read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, ErrInvalidPID
	}

	return pid, nil
}

// Read reads the PID from the default path.
func Read() (int, error) {
	path, err := Path()
	if err != nil {
		return 0, err
	}
	return ReadAt(path)
}

// RemoveAt deletes the PID file at the given path.
// Returns nil if the file doesn't exist.
func RemoveAt(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove PID file: %w", err)
	}
	return nil
}

// Remove deletes the PID file at the default path.
func Remove() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return RemoveAt(path)
}

// IsRunning checks whether a process with the given PID is alive.
func IsRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Package status provides log parsing for relay status display.
package status

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Stats holds parsed statistics from the log file.
type Stats struct {
	Delivered     int
	Errors        int
	LastDelivered *Delivery
}

// Delivery holds information about the last delivered transcript.
type Delivery struct {
	Timestamp  time.Time
	Path       string
	ArchivedTo string
}

// TodayLogPath returns the path to today's relay log file inside logDir.
func TodayLogPath(logDir string) string {
	today := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(logDir, "relay-"+today+".log")
}

// ParseTodayStats parses today's log file in logDir and returns statistics.
// Returns empty stats if the log file doesn't exist.
func ParseTodayStats(logDir string) (*Stats, error) {
	return ParseLogFile(TodayLogPath(logDir))
}

// ParseLogFile parses a log file and returns statistics.
// Returns empty stats if the file doesn't exist.
func ParseLogFile(path string) (*Stats, error) {
	stats := &Stats{}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}
	defer file.Close()

	// Format: 2026-08-26T09:30:00Z INFO  [pipeline] archived transcript path=/watch/standup.txt archived_to=/watch/processed/standup.20260826T093000Z.txt delivery_id=...
	archivedPattern := regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)\s+INFO\s+\[pipeline\]\s+archived transcript\s+path=(\S+)\s+archived_to=(\S+)`)
	errorPattern := regexp.MustCompile(`\s+ERROR\s+`)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if matches := archivedPattern.FindStringSubmatch(line); matches != nil {
			stats.Delivered++
			timestamp, err := time.Parse(time.RFC3339, matches[1])
			if err == nil {
				stats.LastDelivered = &Delivery{
					Timestamp:  timestamp,
					Path:       unquoteIfNeeded(matches[2]),
					ArchivedTo: unquoteIfNeeded(matches[3]),
				}
			}
		}

		if errorPattern.MatchString(line) {
			stats.Errors++
		}
	}

	return stats, scanner.Err()
}

// unquoteIfNeeded removes surrounding quotes from a string if present.
func unquoteIfNeeded(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// FormatTimestamp formats a timestamp for display.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02T15:04:05")
}

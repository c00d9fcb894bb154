package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLogFile_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "relay-test.log")

	os.WriteFile(logPath, []byte(""), 0644)

	stats, err := ParseLogFile(logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Delivered != 0 {
		t.Errorf("expected 0 delivered, got %d", stats.Delivered)
	}
	if stats.Errors != 0 {
		t.Errorf("expected 0 errors, got %d", stats.Errors)
	}
	if stats.LastDelivered != nil {
		t.Error("expected LastDelivered to be nil")
	}
}

func TestParseLogFile_NonExistent(t *testing.T) {
	stats, err := ParseLogFile("/nonexistent/path/relay.log")
	if err != nil {
		t.Fatalf("unexpected error for nonexistent file: %v", err)
	}

	if stats.Delivered != 0 {
		t.Errorf("expected 0 delivered, got %d", stats.Delivered)
	}
}

func TestParseLogFile_WithDeliveries(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "relay-test.log")

	logContent := `2026-08-26T10:00:00Z INFO  [service] starting relay watch_dir=/watch webhook_url=http://localhost:8080/webhook/transcript stage=true poll_interval=5s
2026-08-26T10:00:01Z INFO  [pipeline] found transcript file path=/watch/standup.txt size=42 delivery_id=aaa
2026-08-26T10:00:02Z INFO  [pipeline] transcript delivered meeting_id=standup webhook_url=http://localhost:8080/webhook/transcript delivery_id=aaa
2026-08-26T10:00:02Z INFO  [pipeline] archived transcript path=/watch/standup.txt archived_to=/watch/processed/standup.20260826T100002Z.txt delivery_id=aaa
2026-08-26T11:00:00Z INFO  [pipeline] found transcript file path=/watch/retro.txt size=99 delivery_id=bbb
2026-08-26T11:00:01Z INFO  [pipeline] archived transcript path=/watch/retro.txt archived_to=/watch/processed/retro.20260826T110001Z.txt delivery_id=bbb
`

	os.WriteFile(logPath, []byte(logContent), 0644)

	stats, err := ParseLogFile(logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Delivered != 2 {
		t.Errorf("expected 2 delivered, got %d", stats.Delivered)
	}

	if stats.LastDelivered == nil {
		t.Fatal("expected LastDelivered to be non-nil")
	}

	expectedTime, _ := time.Parse(time.RFC3339, "2026-08-26T11:00:01Z")
	if !stats.LastDelivered.Timestamp.Equal(expectedTime) {
		t.Errorf("expected timestamp %v, got %v", expectedTime, stats.LastDelivered.Timestamp)
	}

	if stats.LastDelivered.Path != "/watch/retro.txt" {
		t.Errorf("expected path /watch/retro.txt, got %s", stats.LastDelivered.Path)
	}

	if stats.LastDelivered.ArchivedTo != "/watch/processed/retro.20260826T110001Z.txt" {
		t.Errorf("unexpected archived_to %s", stats.LastDelivered.ArchivedTo)
	}
}

func TestParseLogFile_CountsErrors(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "relay-test.log")

	logContent := `2026-08-26T10:00:00Z ERROR [pipeline] failed to post transcript, will retry error="connection refused" meeting_id=standup
2026-08-26T10:00:05Z ERROR [pipeline] failed to post transcript, will retry error="connection refused" meeting_id=standup
2026-08-26T10:00:10Z INFO  [pipeline] archived transcript path=/watch/standup.txt archived_to=/watch/processed/standup.20260826T100010Z.txt delivery_id=ccc
`

	os.WriteFile(logPath, []byte(logContent), 0644)

	stats, err := ParseLogFile(logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Errors != 2 {
		t.Errorf("expected 2 errors, got %d", stats.Errors)
	}
	if stats.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %d", stats.Delivered)
	}
}

func TestTodayLogPath(t *testing.T) {
	got := TodayLogPath("/var/log/relay")
	today := time.Now().UTC().Format("2006-01-02")
	want := filepath.Join("/var/log/relay", "relay-"+today+".log")
	if got != want {
		t.Errorf("TodayLogPath = %q, want %q", got, want)
	}
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcriptrelay/internal/relay"
)

func writeStatusConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	cfg := relay.DefaultConfig()
	cfg.WatchDir = filepath.Join(tmpDir, "transcripts")
	cfg.LogDir = filepath.Join(tmpDir, "logs")

	configPath := filepath.Join(tmpDir, "relay.toml")
	if err := cfg.SaveFile(configPath); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(cfg.WatchDir, "processed"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	return configPath
}

func TestStatusCmd_ShowsFileCounts(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeStatusConfig(t, tmpDir)

	watchDir := filepath.Join(tmpDir, "transcripts")
	if err := os.WriteFile(filepath.Join(watchDir, "standup.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(watchDir, "notes.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(watchDir, "processed", "old.20260826T100000Z.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cmd := NewStatusCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Pending files") {
		t.Errorf("output missing pending row: %q", got)
	}
	// One pending .txt file (the .md is not a candidate), one archived
	if !strings.Contains(got, "1") {
		t.Errorf("expected counts in output: %q", got)
	}
}

func TestStatusCmd_EmptyLayout(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeStatusConfig(t, tmpDir)

	cmd := NewStatusCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Delivered today") {
		t.Errorf("output missing delivery stats: %q", got)
	}
}

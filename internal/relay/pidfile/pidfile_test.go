package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtAndReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relay.pid")

	if err := WriteAt(path, 12345); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}

	pid, err := ReadAt(path)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if pid != 12345 {
		t.Errorf("pid = %d, want 12345", pid)
	}
}

func TestReadAt_MissingFile(t *testing.T) {
	_, err := ReadAt(filepath.Join(t.TempDir(), "relay.pid"))
	if !errors.Is(err, ErrNoPIDFile) {
		t.Errorf("err = %v, want ErrNoPIDFile", err)
	}
}

func TestReadAt_InvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "garbage", content: "not-a-pid\n"},
		{name: "negative", content: "-5\n"},
		{name: "zero", content: "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "relay.pid")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			_, err := ReadAt(path)
			if !errors.Is(err, ErrInvalidPID) {
				t.Errorf("err = %v, want ErrInvalidPID", err)
			}
		})
	}
}

func TestRemoveAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.pid")
	if err := WriteAt(path, 1); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}

	if err := RemoveAt(path); err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected PID file to be removed")
	}

	// Removing again is not an error
	if err := RemoveAt(path); err != nil {
		t.Errorf("RemoveAt on missing file = %v, want nil", err)
	}
}

func TestIsRunning(t *testing.T) {
	if !IsRunning(os.Getpid()) {
		t.Errorf("expected current process to be running")
	}
}

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "relay version") {
		t.Errorf("output = %q, want it to contain 'relay version'", got)
	}
	if !strings.Contains(got, Version) {
		t.Errorf("output = %q, want it to contain version %q", got, Version)
	}
}

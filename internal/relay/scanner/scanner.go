// Package scanner detects stable transcript files eligible for delivery.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultProbeDelay is the pause between the two size probes of the
// stability check. Long enough to catch an in-progress write, short enough
// not to stall the poll cycle.
const DefaultProbeDelay = 200 * time.Millisecond

// Candidate is a stable transcript file eligible for delivery this cycle.
type Candidate struct {
	Path string
	Size int64
}

// Seen reports whether a path has already been terminally handled.
type Seen interface {
	Contains(path string) bool
}

// Scanner produces delivery candidates from a single watched directory.
// Files are eligible when they carry a .txt extension, sit directly in the
// watch root, are not already handled, and hold a constant size across two
// probes separated by ProbeDelay.
type Scanner struct {
	// Root is the watched directory.
	Root string
	// ArchiveDir is the subdirectory that holds delivered files. Entries
	// resolving inside it are never candidates.
	ArchiveDir string
	// ProbeDelay is the pause between the two size probes.
	ProbeDelay time.Duration
}

// New creates a Scanner for the given watch root and archive directory.
func New(root, archiveDir string, probeDelay time.Duration) *Scanner {
	if probeDelay <= 0 {
		probeDelay = DefaultProbeDelay
	}
	return &Scanner{
		Root:       root,
		ArchiveDir: archiveDir,
		ProbeDelay: probeDelay,
	}
}

// Scan lists the watch root and returns the candidates that passed the
// stability probe, in lexicographic order by file name. A missing watch
// root is recreated and yields an empty slice. Files skipped for an
// unstable size or a probe error are not marked handled and stay eligible
// for the next cycle.
func (s *Scanner) Scan(ctx context.Context, seen Seen) ([]Candidate, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(s.Root, 0755); mkErr != nil {
				return nil, mkErr
			}
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var candidates []Candidate
	for _, name := range names {
		path := filepath.Join(s.Root, name)

		if s.insideArchive(path) {
			continue
		}
		if seen != nil && seen.Contains(path) {
			continue
		}

		size, ok := s.probeStable(ctx, path)
		if !ok {
			continue
		}

		candidates = append(candidates, Candidate{Path: path, Size: size})
	}

	return candidates, nil
}

// insideArchive reports whether path resolves under the archive directory.
// Failures while computing containment count as "not inside" so a
// containment-check error never hides a candidate permanently.
func (s *Scanner) insideArchive(path string) bool {
	if s.ArchiveDir == "" {
		return false
	}
	rel, err := filepath.Rel(s.ArchiveDir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// probeStable records the file size twice, ProbeDelay apart. A size change
// or a probe error disqualifies the file for this cycle only.
func (s *Scanner) probeStable(ctx context.Context, path string) (int64, bool) {
	first, err := os.Stat(path)
	if err != nil {
		return 0, false
	}

	select {
	case <-ctx.Done():
		return 0, false
	case <-time.After(s.ProbeDelay):
	}

	second, err := os.Stat(path)
	if err != nil {
		return 0, false
	}

	if first.Size() != second.Size() {
		return 0, false
	}
	return second.Size(), true
}

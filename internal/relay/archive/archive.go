// Package archive moves delivered transcript files out of the watch root.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout is the compact UTC suffix applied to archived file names,
// e.g. standup.20240115T093000Z.txt.
const timestampLayout = "20060102T150405Z"

// Archiver moves delivered files into an archive directory with a
// timestamped name so repeated deliveries of the same meeting never
// overwrite a prior archived copy.
type Archiver struct{}

// New creates an Archiver.
func New() *Archiver {
	return &Archiver{}
}

// Archive renames sourcePath into archiveDir as
// <meeting_id>.<UTC-timestamp>.txt, creating archiveDir if needed, and
// returns the destination path. The move is a single rename; on failure the
// source file is left in place and the error is returned for the caller to
// record.
func (a *Archiver) Archive(ctx context.Context, sourcePath, archiveDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	base := filepath.Base(sourcePath)
	meetingID := strings.TrimSuffix(base, filepath.Ext(base))
	stamp := time.Now().UTC().Format(timestampLayout)

	destPath := filepath.Join(archiveDir, fmt.Sprintf("%s.%s.txt", meetingID, stamp))

	// Same-second redelivery of the same meeting gets a numbered name
	// instead of clobbering the existing archive entry.
	for n := 1; ; n++ {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		destPath = filepath.Join(archiveDir, fmt.Sprintf("%s.%s-%d.txt", meetingID, stamp, n))
	}

	if err := os.Rename(sourcePath, destPath); err != nil {
		return "", fmt.Errorf("archive file: %w", err)
	}

	return destPath, nil
}

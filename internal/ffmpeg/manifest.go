package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EscapeManifestPath quotes path for a concat demuxer "file '...'" line.
// Backslashes are doubled first, then each single quote becomes '\''.
func EscapeManifestPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	return strings.ReplaceAll(path, "'", `'\''`)
}

// RenderManifest returns the manifest text for segments, one line each.
func RenderManifest(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		fmt.Fprintf(&b, "file '%s'\n", EscapeManifestPath(s))
	}
	return b.String()
}

// WriteManifest writes a manifest for segments into dir and returns its
// path. Segment paths are made absolute so the manifest can live anywhere.
// The caller removes the file when the job is done.
func WriteManifest(dir, name string, segments []string) (string, error) {
	abs := make([]string, len(segments))
	for i, s := range segments {
		a, err := filepath.Abs(s)
		if err != nil {
			return "", fmt.Errorf("manifest: %w", err)
		}
		abs[i] = a
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("manifest dir: %w", err)
	}
	f, err := os.CreateTemp(dir, name+"-*.txt")
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	if _, err := f.WriteString(RenderManifest(abs)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("manifest: %w", err)
	}
	return f.Name(), nil
}

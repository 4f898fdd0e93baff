// Package display renders human-facing output: the banner, byte and
// duration formatting, and tables for inspect and the run summary.
package display

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatDuration renders d as "1h02m03s", "4m05s", or "6.2s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// FormatSampleRate returns a rate in kHz, e.g. "48 kHz" or "44.1 kHz".
func FormatSampleRate(hz int) string {
	if hz%1000 == 0 {
		return fmt.Sprintf("%d kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f kHz", float64(hz)/1000)
}

// cells measures terminal width with "…" counted as one cell regardless of
// locale.
var cells = &runewidth.Condition{StrictEmojiNeutral: true}

// Truncate shortens s to at most width terminal cells, ending in "…" when
// anything was cut. Multi-byte runes are never split.
func Truncate(s string, width int) string {
	return cells.Truncate(s, width, "…")
}

// PadRight fills s with spaces up to width terminal cells.
func PadRight(s string, width int) string {
	return cells.FillRight(s, width)
}

// Package term holds the ANSI color codes shared by the logger, the
// confirmation prompt, and the tables, plus terminal detection.
//
// The codes are package-level strings set once by [Configure]. With colors
// off they are empty, so callers concatenate them unconditionally.
package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/polysplit/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = "" // Reset sequence.
)

// Configure decides whether stdout gets colors and sets the codes
// accordingly. Called from [logging.NewLogger].
func Configure(mode config.ColorMode) {
	set(ShouldColor(mode, IsTerminal(os.Stdout), os.Getenv))
}

func set(on bool) {
	if !on {
		Red, Green, Yellow, Blue, Cyan, Magenta, NC = "", "", "", "", "", "", ""
		return
	}
	Red = "\033[1;91m"
	Green = "\033[1;92m"
	Yellow = "\033[1;93m"
	Blue = "\033[1;94m"
	Cyan = "\033[1;96m"
	Magenta = "\033[1;95m"
	NC = "\033[0m"
}

// ShouldColor applies the color mode. In auto mode colors need a terminal,
// an unset NO_COLOR (https://no-color.org), and a TERM other than "dumb".
func ShouldColor(mode config.ColorMode, tty bool, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if !tty || getenv("NO_COLOR") != "" {
		return false
	}
	return !strings.EqualFold(getenv("TERM"), "dumb")
}

// IsTerminal reports whether f is attached to a terminal, including Cygwin
// and MSYS pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package display

import (
	"fmt"
	"io"

	"github.com/backmassage/polysplit/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	if term.Magenta != "" {
		fmt.Fprint(w, "\033[1;95m")
	}
	fmt.Fprint(w, `             _           _ _ _
 _ __   ___ | |_   _ ___ _ __ | (_) |_
| '_ \ / _ \| | | | / __| '_ \| | | __|
| |_) | (_) | | |_| \__ \ |_) | | | |_
| .__/ \___/|_|\__, |___/ .__/|_|_|\__|
|_|            |___/    |_|
`)
	if term.Magenta != "" {
		fmt.Fprintln(w, term.NC)
	}
}

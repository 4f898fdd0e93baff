package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/polysplit/internal/term"
)

// ErrNotInteractive is returned by TTYConfirmer when stdin is not a
// terminal.
var ErrNotInteractive = errors.New("not an interactive terminal (use --yes)")

// Confirmer asks whether path may be deleted.
type Confirmer interface {
	Confirm(path string) (bool, error)
}

// TTYConfirmer asks on the terminal and requires the directory's base name
// to be typed back.
type TTYConfirmer struct {
	In  *os.File
	Out io.Writer
}

// NewTTYConfirmer confirms on stdin/stderr.
func NewTTYConfirmer() TTYConfirmer {
	return TTYConfirmer{In: os.Stdin, Out: os.Stderr}
}

// Confirm prompts for the base name of path.
func (c TTYConfirmer) Confirm(path string) (bool, error) {
	if c.In == nil || !term.IsTerminal(c.In) {
		return false, ErrNotInteractive
	}
	return promptName(c.In, c.Out, path)
}

func promptName(in io.Reader, out io.Writer, path string) (bool, error) {
	name := filepath.Base(path)
	fmt.Fprintf(out, "%sAbout to delete %s and everything in it.%s\nType %q to continue: ",
		term.Yellow, path, term.NC, name)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.TrimSpace(line) == name, nil
}

// StaticConfirmer answers every prompt with its value. It backs --yes
// style automation and tests.
type StaticConfirmer bool

// Confirm returns the fixed answer.
func (s StaticConfirmer) Confirm(string) (bool, error) { return bool(s), nil }

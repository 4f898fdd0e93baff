// Package labels loads the ordered channel label list and turns each label
// into the filename-safe form used for output names.
package labels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingSource is returned when the labels file does not exist.
var ErrMissingSource = errors.New("channel labels file not found")

// Table is the ordered, sanitized list of channel labels. Index 1 is the
// first retained line. A Table is immutable once loaded.
type Table struct {
	labels []string
}

// NewTable builds a Table from already sanitized labels.
func NewTable(labels []string) Table {
	return Table{labels: append([]string(nil), labels...)}
}

// Len returns the number of labels.
func (t Table) Len() int { return len(t.labels) }

// Label returns the label for a 1-based channel index, or "" when the index
// is out of range.
func (t Table) Label(channel int) string {
	if channel < 1 || channel > len(t.labels) {
		return ""
	}
	return t.labels[channel-1]
}

// Labels returns a copy of all labels in order.
func (t Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Load reads the labels file at path.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return Table{}, fmt.Errorf("open labels %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return Table{}, fmt.Errorf("read labels %s: %w", path, err)
	}
	return t, nil
}

// Parse reads labels from r. Blank lines and lines whose first non-space
// character is '#' are skipped and do not take a channel slot.
func Parse(r io.Reader) (Table, error) {
	var out []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, Sanitize(line))
	}
	if err := sc.Err(); err != nil {
		return Table{}, err
	}
	return Table{labels: out}, nil
}

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reDisallowed = regexp.MustCompile(`[^A-Z0-9_+=.\-]`)
	reUnderscore = regexp.MustCompile(`_+`)
)

// Sanitize uppercases s and reduces it to [A-Z0-9_+=.-], with whitespace
// runs and other characters mapped to single underscores and no leading or
// trailing underscore. The result may be empty.
func Sanitize(s string) string {
	s = cases.Upper(language.Und).String(s)
	s = reWhitespace.ReplaceAllString(s, "_")
	s = reDisallowed.ReplaceAllString(s, "_")
	s = reUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

package session

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/backmassage/polysplit/internal/config"
)

// Supported audio file extensions (lowercase, with leading dot).
var audioExtensions = map[string]bool{
	".wav":  true,
	".aif":  true,
	".aiff": true,
}

// reSegment matches recorder segment names such as 00000001.WAV.
var reSegment = regexp.MustCompile(`^[0-9]{8}\.(?i:wav)$`)

// IsAudioFile reports whether name has a supported audio extension. Hidden
// files, including macOS "._" resource forks, never count.
func IsAudioFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsSegment reports whether name is an 8-digit recorder segment file.
func IsSegment(name string) bool {
	return reSegment.MatchString(name)
}

// Discovery is the result of scanning a source root.
type Discovery struct {
	Units   []Unit
	Notices []string // Non-fatal findings, e.g. sessions without segments.
}

// Discover scans root according to mode.
//
//	off: every audio file anywhere under root is its own unit.
//	dir: segment files directly in root make root one session; otherwise
//	     every directory holding segments becomes a session.
//	all: root is one session made of the audio files directly inside it.
//
// Units and segments are sorted by path, which orders fixed-width numeric
// segment names chronologically.
//
// root is made absolute first so that sessions rooted at "." or ".." are
// named after the real directory.
func Discover(root string, mode config.StitchMode) (Discovery, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Discovery{}, fmt.Errorf("source %s: %w", root, err)
	}
	root = abs
	if mode != config.StitchOff && filepath.Dir(root) == root {
		return Discovery{}, fmt.Errorf("source %s: a filesystem root cannot be a session", root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return Discovery{}, fmt.Errorf("source %s: %w", root, err)
	}
	if !info.IsDir() {
		return Discovery{}, fmt.Errorf("source %s: not a directory", root)
	}

	switch mode {
	case config.StitchDir:
		return discoverDir(root)
	case config.StitchAll:
		return discoverAll(root)
	default:
		return discoverFiles(root)
	}
}

func discoverFiles(root string) (Discovery, error) {
	files, err := walk(root, IsAudioFile)
	if err != nil {
		return Discovery{}, err
	}
	var d Discovery
	for _, f := range files {
		d.Units = append(d.Units, NewFileUnit(f))
	}
	return d, nil
}

func discoverDir(root string) (Discovery, error) {
	direct, err := listDir(root, IsSegment)
	if err != nil {
		return Discovery{}, err
	}
	if len(direct) > 0 {
		return Discovery{Units: []Unit{NewSessionUnit(root, direct)}}, nil
	}

	segments, err := walk(root, IsSegment)
	if err != nil {
		return Discovery{}, err
	}
	byDir := make(map[string][]string)
	var dirs []string
	for _, s := range segments {
		dir := filepath.Dir(s)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], s)
	}
	sort.Strings(dirs)

	var d Discovery
	for _, dir := range dirs {
		d.Units = append(d.Units, NewSessionUnit(dir, sortByName(byDir[dir])))
	}
	if len(d.Units) == 0 {
		d.Notices = append(d.Notices, fmt.Sprintf("no segment files (8 digits + .WAV) found under %s", root))
	}
	return d, nil
}

func discoverAll(root string) (Discovery, error) {
	segments, err := listDir(root, IsAudioFile)
	if err != nil {
		return Discovery{}, err
	}
	if len(segments) == 0 {
		return Discovery{Notices: []string{fmt.Sprintf("no audio files directly in %s, session skipped", root)}}, nil
	}
	return Discovery{Units: []Unit{NewSessionUnit(root, segments)}}, nil
}

// walk collects regular files under root whose base name passes keep,
// sorted lexicographically.
func walk(root string, keep func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if keep(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// listDir returns the regular files directly inside dir whose names pass
// keep, sorted by name.
func listDir(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !keep(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return sortByName(files), nil
}

// sortByName orders paths by base name in byte order.
func sortByName(paths []string) []string {
	sort.SliceStable(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths
}

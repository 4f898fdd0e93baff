// Package session turns a source directory into the units polysplit
// processes: independent multichannel files, or FAT32 segment chains
// stitched back into one recording per session.
package session

import (
	"path/filepath"
	"strings"
)

// Kind distinguishes the two unit shapes.
type Kind int

const (
	SingleFile Kind = iota
	StitchedSession
)

func (k Kind) String() string {
	if k == StitchedSession {
		return "session"
	}
	return "file"
}

// Unit is one source of per-channel outputs. For a SingleFile, Paths holds
// exactly one path and Name is its stem. For a StitchedSession, Paths holds
// the segments in playback order and Name is the session directory's name.
type Unit struct {
	Kind  Kind
	Name  string
	Dir   string
	Paths []string
}

// ID identifies the unit in logs and results.
func (u Unit) ID() string {
	if u.Kind == StitchedSession {
		return u.Dir
	}
	if len(u.Paths) == 0 {
		return u.Name
	}
	return u.Paths[0]
}

// NewFileUnit wraps one source file.
func NewFileUnit(path string) Unit {
	base := filepath.Base(path)
	return Unit{
		Kind:  SingleFile,
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:   filepath.Dir(path),
		Paths: []string{path},
	}
}

// NewSessionUnit wraps the ordered segments found in dir.
func NewSessionUnit(dir string, segments []string) Unit {
	return Unit{
		Kind:  StitchedSession,
		Name:  filepath.Base(dir),
		Dir:   dir,
		Paths: append([]string(nil), segments...),
	}
}

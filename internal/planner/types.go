package planner

import (
	"errors"
	"fmt"

	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/probe"
)

// ErrChannelCountMismatch marks a unit whose channel count differs from the
// number of labels.
var ErrChannelCountMismatch = errors.New("channel count does not match label count")

// ChannelCountError carries both counts for the report.
type ChannelCountError struct {
	Unit     string
	Labels   int
	Channels int
}

func (e *ChannelCountError) Error() string {
	return fmt.Sprintf("%s: %s has %d channels but %d labels are defined", ErrChannelCountMismatch, e.Unit, e.Channels, e.Labels)
}

func (e *ChannelCountError) Unwrap() error { return ErrChannelCountMismatch }

// Options are the run-wide settings that shape every plan.
type Options struct {
	OutputRoot string
	Layout     config.Layout
	NameStyle  config.NameStyle
	PadWidth   int
	Resume     bool // Skip channels whose target already exists and is non-empty.
}

// Entry is one channel's output.
type Entry struct {
	Channel int    // 1-based.
	Label   string // Normalized label, possibly empty.
	Path    string
	Skip    bool // Already present (resume).
}

// OutputPlan holds every decision needed to split one unit. It is produced
// by Build and consumed by the ffmpeg package to construct arguments.
type OutputPlan struct {
	Entries     []Entry
	Codec       string
	FilterGraph string // Empty when every entry is skipped.
	OutputDir   string
	Descriptor  probe.Descriptor
}

// NothingToDo reports whether every entry is skipped.
func (p *OutputPlan) NothingToDo() bool {
	for _, e := range p.Entries {
		if !e.Skip {
			return false
		}
	}
	return true
}

// Active returns the entries ffmpeg must write, in channel order.
func (p *OutputPlan) Active() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if !e.Skip {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns every entry path, skipped or not.
func (p *OutputPlan) Paths() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Path
	}
	return out
}

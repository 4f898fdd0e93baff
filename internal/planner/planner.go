package planner

import (
	"os"

	"github.com/backmassage/polysplit/internal/labels"
	"github.com/backmassage/polysplit/internal/naming"
	"github.com/backmassage/polysplit/internal/probe"
	"github.com/backmassage/polysplit/internal/session"
)

// Build produces the OutputPlan for one unit. The label table must hold
// exactly one label per channel.
//
// Flow:
//  0. Reject unit names that would escape or hide under the output root
//  1. Check label count against the probed channel count
//  2. Normalize each label and derive its output path
//  3. Under resume, mark existing non-empty targets as skipped
//  4. Build the split graph over the remaining channels
func Build(u session.Unit, desc probe.Descriptor, table labels.Table, opts Options) (*OutputPlan, error) {
	if err := naming.ValidUnitName(u.Name); err != nil {
		return nil, err
	}
	if table.Len() != desc.Channels {
		return nil, &ChannelCountError{Unit: u.ID(), Labels: table.Len(), Channels: desc.Channels}
	}

	plan := &OutputPlan{
		Codec:      desc.Codec(),
		OutputDir:  naming.UnitDir(opts.OutputRoot, opts.Layout, u.Name),
		Descriptor: desc,
		Entries:    make([]Entry, 0, desc.Channels),
	}

	for ch := 1; ch <= desc.Channels; ch++ {
		label := labels.Normalize(ch, table.Label(ch), opts.NameStyle, opts.PadWidth)
		path := naming.OutputPath(opts.OutputRoot, opts.Layout, naming.ChannelName{
			Unit:     u.Name,
			Channel:  ch,
			Label:    label,
			PadWidth: opts.PadWidth,
		})
		plan.Entries = append(plan.Entries, Entry{
			Channel: ch,
			Label:   label,
			Path:    path,
			Skip:    opts.Resume && nonEmptyFile(path),
		})
	}

	plan.FilterGraph = SplitGraph(activeChannels(plan.Entries))
	return plan, nil
}

func activeChannels(entries []Entry) []int {
	var out []int
	for _, e := range entries {
		if !e.Skip {
			out = append(out, e.Channel)
		}
	}
	return out
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

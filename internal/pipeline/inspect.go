package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/polysplit/internal/display"
	"github.com/backmassage/polysplit/internal/labels"
	"github.com/backmassage/polysplit/internal/probe"
	"github.com/backmassage/polysplit/internal/session"
	"github.com/backmassage/polysplit/internal/term"
)

// unitRow holds the probed per-unit data for the inspect table.
type unitRow struct {
	Unit   session.Unit
	Desc   probe.Descriptor
	Err    error
	Labels string // "ok", a mismatch note, or "-" without a labels file.
}

// InspectReport summarizes an inspect pass.
type InspectReport struct {
	Units    int
	Problems int // Probe failures, segment mismatches, and label count mismatches.
}

// Inspect discovers units, probes each one, and prints a table of channel
// count, sample rate, and format with label-count and format outliers
// flagged. Nothing is written. A missing labels file is reported but not
// fatal.
func (r *Runner) Inspect(ctx context.Context) (InspectReport, error) {
	cfg := r.Cfg
	var rep InspectReport

	table, tableErr := labels.Load(cfg.LabelsFile)
	if tableErr != nil && !errors.Is(tableErr, labels.ErrMissingSource) {
		return rep, tableErr
	}
	if tableErr != nil {
		r.Log.Warn("%v; label counts not checked", tableErr)
	}

	found, err := session.Discover(cfg.SourceDir, cfg.Stitch)
	if err != nil {
		return rep, fmt.Errorf("discover: %w", err)
	}
	for _, n := range found.Notices {
		r.Log.Warn("%s", n)
	}
	if len(found.Units) == 0 {
		r.Log.Warn("No audio found in %s", cfg.SourceDir)
		return rep, nil
	}

	total := len(found.Units)
	rep.Units = total
	r.Log.Info("Inspecting %d unit(s) in %s …", total, cfg.SourceDir)

	isTTY := term.IsTerminal(os.Stdout) && r.Out == os.Stdout
	rows := make([]unitRow, 0, total)
	for i, u := range found.Units {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(r.Out)
			}
			return rep, ctx.Err()
		}
		if isTTY {
			printProgress(r.Out, i+1, total, u.Name)
		}

		row := unitRow{Unit: u, Labels: "-"}
		row.Desc, row.Err = session.Describe(ctx, r.Prober, u)
		if row.Err == nil && tableErr == nil {
			if table.Len() == row.Desc.Channels {
				row.Labels = "ok"
			} else {
				row.Labels = fmt.Sprintf("%d labels", table.Len())
			}
		}
		if row.Err != nil || (row.Labels != "ok" && row.Labels != "-") {
			rep.Problems++
		}
		rows = append(rows, row)
	}
	if isTTY {
		clearProgress(r.Out)
	}

	printInspectTable(r.Out, rows)
	r.Log.Info("Inspected %d unit(s)", total)
	if rep.Problems > 0 {
		r.Log.Warn("  %d unit(s) would fail", rep.Problems)
	} else {
		r.Log.Success("  All units can be split")
	}
	return rep, nil
}

func printInspectTable(w io.Writer, rows []unitRow) {
	commonRate, commonFmt := majority(rows)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.Err != nil {
			out = append(out, []string{r.Unit.Name, r.Unit.Kind.String(), strconv.Itoa(len(r.Unit.Paths)),
				"", "", "", "", term.Red + "[!] " + firstLine(r.Err) + term.NC})
			continue
		}
		var flags []string
		if r.Labels != "ok" && r.Labels != "-" {
			flags = append(flags, "label count")
		}
		if r.Desc.SampleRate != commonRate || r.Desc.Format != commonFmt {
			flags = append(flags, "differs from batch")
		}
		flag := ""
		if len(flags) > 0 {
			flag = term.Yellow + "[*] " + strings.Join(flags, ", ") + term.NC
		}
		out = append(out, []string{
			r.Unit.Name,
			r.Unit.Kind.String(),
			strconv.Itoa(len(r.Unit.Paths)),
			strconv.Itoa(r.Desc.Channels),
			display.FormatSampleRate(r.Desc.SampleRate),
			r.Desc.Format.String(),
			r.Labels,
			flag,
		})
	}
	fmt.Fprintln(w, display.RenderTable(
		[]string{"Unit", "Kind", "Files", "Channels", "Rate", "Format", "Labels", "Notes"},
		out,
		[]display.Align{display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignRight},
	))
}

// majority returns the most common sample rate and format among the
// successfully probed rows.
func majority(rows []unitRow) (int, probe.SampleFormat) {
	rates := map[int]int{}
	formats := map[probe.SampleFormat]int{}
	var bestRate int
	var bestFmt probe.SampleFormat
	first := true
	for _, r := range rows {
		if r.Err != nil {
			continue
		}
		rates[r.Desc.SampleRate]++
		formats[r.Desc.Format]++
		if first || rates[r.Desc.SampleRate] > rates[bestRate] {
			bestRate = r.Desc.SampleRate
		}
		if first || formats[r.Desc.Format] > formats[bestFmt] {
			bestFmt = r.Desc.Format
		}
		first = false
	}
	return bestRate, bestFmt
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return display.Truncate(msg, 60)
}

// printProgress shows a live probe counter as an inline \r-overwritten
// line.
func printProgress(w io.Writer, current, total int, name string) {
	pct := current * 100 / total
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, pct)

	status += display.Truncate(name, 40)

	// Pad to 80 cells to overwrite previous longer lines, then \r.
	fmt.Fprintf(w, "\r%s", display.PadRight(status, 80))
}

// clearProgress erases the inline progress line.
func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/polysplit/internal/check"
	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/display"
	"github.com/backmassage/polysplit/internal/ffmpeg"
	"github.com/backmassage/polysplit/internal/labels"
	"github.com/backmassage/polysplit/internal/logging"
	"github.com/backmassage/polysplit/internal/naming"
	"github.com/backmassage/polysplit/internal/output"
	"github.com/backmassage/polysplit/internal/planner"
	"github.com/backmassage/polysplit/internal/probe"
	"github.com/backmassage/polysplit/internal/scheduler"
	"github.com/backmassage/polysplit/internal/session"
)

// ErrJobFailure marks a unit whose job did not complete. A run with any
// such unit exits non-zero after every unit has finished.
var ErrJobFailure = errors.New("job failed")

// Runner owns all state of one run. Zero-valued collaborators are filled
// in by NewRunner; tests substitute fakes.
type Runner struct {
	Cfg       *config.Config
	Log       *logging.Logger
	Prober    probe.Prober
	FFmpeg    ffmpeg.Runner
	Confirmer output.Confirmer
	RunID     string
	Out       io.Writer // Summary table destination.
	Scratch   string    // Manifest directory; default <tmp>/polysplit-<RunID>.
}

// NewRunner wires the production collaborators for cfg.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{
		Cfg:       cfg,
		Log:       log,
		Prober:    probe.FFprobe{Binary: cfg.FFprobeBinary},
		FFmpeg:    ffmpeg.Exec{Verbose: cfg.Verbose},
		Confirmer: output.NewTTYConfirmer(),
		RunID:     uuid.NewString(),
		Out:       os.Stdout,
	}
}

// job is one planned unit ready for the scheduler.
type job struct {
	unit session.Unit
	plan *planner.OutputPlan
}

// Run executes the whole batch. The returned error is non-nil for a
// whole-run failure (bad labels, discovery, reference probe, refused
// output action, lock) or, after every unit has finished, when any unit
// failed.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	start := time.Now()
	cfg := r.Cfg
	var stats RunStats

	r.Log.Info("Run ID: %s", r.RunID)

	// --- Paths ---
	if err := r.checkPaths(); err != nil {
		return stats, err
	}

	// --- Labels ---
	table, err := labels.Load(cfg.LabelsFile)
	if err != nil {
		return stats, err
	}
	r.Log.Info("Loaded %d channel labels from %s", table.Len(), cfg.LabelsFile)

	// --- Discover ---
	found, err := session.Discover(cfg.SourceDir, cfg.Stitch)
	if err != nil {
		return stats, fmt.Errorf("discover: %w", err)
	}
	for _, n := range found.Notices {
		r.Log.Warn("%s", n)
	}
	if len(found.Units) == 0 {
		r.Log.Warn("Nothing to process in %s", cfg.SourceDir)
		return stats, nil
	}
	stats.Units = len(found.Units)
	r.logBatchHeader(found.Units)

	// --- Validate (read-only; a bad reference aborts before any output) ---
	results := make([]scheduler.JobResult, 0, len(found.Units))
	type described struct {
		unit session.Unit
		desc probe.Descriptor
	}
	var ready []described
	for _, u := range found.Units {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		desc, err := session.Describe(ctx, r.Prober, u)
		if errors.Is(err, session.ErrReferenceProbe) {
			return stats, fmt.Errorf("%s: %w", u.Name, err)
		}
		if err != nil {
			r.Log.Error("%s: %v", u.Name, err)
			results = append(results, scheduler.JobResult{UnitID: u.ID(), Err: err})
			continue
		}
		r.Log.Debug(cfg.Verbose, "%s: %s", u.Name, desc)
		ready = append(ready, described{u, desc})
	}

	// --- Output root ---
	if !cfg.DryRun {
		lock, err := output.AcquireLock(cfg.OutputDir)
		if err != nil {
			return stats, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.Log.Warn("%v", err)
			}
		}()
	}
	mgr := output.NewManager(cfg, r.Confirmer, r.Log)
	root, err := mgr.Prepare(cfg.OutputDir)
	if err != nil {
		return stats, err
	}
	r.Log.Info("Output: %s", root.Target())

	// --- Plan ---
	opts := planner.Options{
		OutputRoot: root.Target(),
		Layout:     cfg.Layout,
		NameStyle:  cfg.NameStyle,
		PadWidth:   cfg.PadWidth,
		Resume:     cfg.Mode == config.ModeResume,
	}
	registry := naming.NewRegistry()
	var jobs []job
	var need int64
	for _, d := range ready {
		plan, err := planner.Build(d.unit, d.desc, table, opts)
		if err == nil {
			err = registry.Claim(d.unit.ID(), plan.Paths())
		}
		if err != nil {
			r.Log.Error("%s: %v", d.unit.Name, err)
			results = append(results, scheduler.JobResult{UnitID: d.unit.ID(), Err: err})
			continue
		}
		need += planner.EstimateBytes(d.unit, plan)
		jobs = append(jobs, job{unit: d.unit, plan: plan})
	}
	if err := check.EnsureSpace(root.Target(), need); err != nil {
		r.Log.Warn("%v", err)
	} else if need > 0 {
		r.Log.Debug(cfg.Verbose, "Estimated output size: %s", display.FormatBytes(need))
	}

	// --- Execute ---
	limit := cfg.EffectiveJobs()
	r.Log.Info("Running %d job(s), %d at a time", len(jobs), limit)
	results = append(results, scheduler.Run(ctx, jobs, limit, r.execute)...)
	_ = os.Remove(r.scratchDir()) // Only succeeds once every manifest is gone.

	// --- Tally and finalize ---
	sum := scheduler.Summarize(results)
	stats.Succeeded, stats.Skipped, stats.Failed = sum.Succeeded, sum.Skipped, sum.Failed
	for i, res := range results[len(results)-len(jobs):] {
		if res.Failed() {
			continue
		}
		p := jobs[i].plan
		stats.FilesKept += len(p.Entries) - len(p.Active())
		if res.Skipped {
			continue
		}
		stats.FilesWritten += len(p.Active())
		for _, e := range p.Active() {
			if info, err := os.Stat(e.Path); err == nil {
				stats.BytesWritten += info.Size()
			}
		}
	}

	if err := mgr.Finalize(root, stats.OK() && ctx.Err() == nil); err != nil {
		return stats, err
	}

	stats.Elapsed = time.Since(start)
	r.printSummary(results, jobs, &stats)

	if ctx.Err() != nil {
		return stats, ctx.Err()
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d units failed", ErrJobFailure, stats.Failed, stats.Units)
	}
	return stats, nil
}

// execute runs one planned unit. It is called concurrently by the
// scheduler and only touches its own job's files.
func (r *Runner) execute(ctx context.Context, j job) scheduler.JobResult {
	res := scheduler.JobResult{UnitID: j.unit.ID()}
	name := j.unit.Name
	active := j.plan.Active()

	if j.plan.NothingToDo() {
		r.Log.Info("%s: all %d channels present, skipping", name, len(j.plan.Entries))
		res.Skipped = true
		return res
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %s: %v", ErrJobFailure, name, ctx.Err())
		return res
	}

	in := ffmpeg.Input{Path: j.unit.Paths[0]}
	opts := ffmpeg.OptionsFromConfig(r.Cfg)

	if r.Cfg.DryRun {
		if j.unit.Kind == session.StitchedSession {
			in.Manifest = filepath.Join(r.scratchDir(), name+".txt")
			r.Log.Debug(r.Cfg.Verbose, "%s manifest:\n%s", name, strings.TrimRight(ffmpeg.RenderManifest(j.unit.Paths), "\n"))
		}
		r.Log.Dry("%s: would write %d file(s) to %s", name, len(active), j.plan.OutputDir)
		r.Log.Dry("%s", ffmpeg.CommandLine(ffmpeg.Build(opts, in, j.plan)))
		return res
	}

	if err := os.MkdirAll(j.plan.OutputDir, 0o755); err != nil {
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %s: %v", ErrJobFailure, name, err)
		return res
	}
	if j.unit.Kind == session.StitchedSession {
		manifest, err := ffmpeg.WriteManifest(r.scratchDir(), name, j.unit.Paths)
		if err != nil {
			res.ExitCode = -1
			res.Err = fmt.Errorf("%w: %s: %v", ErrJobFailure, name, err)
			return res
		}
		defer os.Remove(manifest)
		in.Manifest = manifest
	}

	args := ffmpeg.Build(opts, in, j.plan)
	r.Log.Info("%s: splitting %d channel(s) from %d source file(s)", name, len(active), len(j.unit.Paths))
	r.Log.Debug(r.Cfg.Verbose, "%s", ffmpeg.CommandLine(args))

	start := time.Now()
	out := r.FFmpeg.Run(ctx, args)
	if out.Err != nil {
		// Partial files would look finished to a later resume.
		for _, e := range active {
			os.Remove(e.Path)
		}
		res.ExitCode = out.ExitCode
		detail := ffmpeg.Diagnose(out.Stderr)
		if detail == "" {
			detail = ffmpeg.LastLine(out.Stderr)
		}
		if detail == "" {
			detail = out.Err.Error()
		}
		res.Err = fmt.Errorf("%w: %s: exit %d: %s", ErrJobFailure, name, out.ExitCode, detail)
		r.Log.Error("%v", res.Err)
		logStderr(r.Log, r.Cfg.Verbose, out.Stderr)
		return res
	}

	r.Log.Success("%s: %d file(s) in %s", name, len(active), display.FormatDuration(time.Since(start)))
	return res
}

// checkPaths refuses a layout where the output root overlaps the source or
// holds the labels file. Output modes rename or delete that root.
func (r *Runner) checkPaths() error {
	var resolved [3]string
	for i, p := range []string{r.Cfg.SourceDir, r.Cfg.OutputDir, r.Cfg.LabelsFile} {
		abs, err := config.ResolvePath(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		resolved[i] = abs
	}
	return r.Cfg.ValidatePaths(resolved[0], resolved[1], resolved[2])
}

func (r *Runner) scratchDir() string {
	if r.Scratch != "" {
		return r.Scratch
	}
	return filepath.Join(os.TempDir(), "polysplit-"+r.RunID)
}

// logStderr echoes the tail of ffmpeg's stderr in verbose mode; otherwise
// the one-line diagnosis is enough.
func logStderr(log *logging.Logger, verbose bool, stderr string) {
	if !verbose || stderr == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Debug(verbose, "  %s", l)
	}
}

// --- Logging helpers ---

func (r *Runner) logBatchHeader(units []session.Unit) {
	cfg := r.Cfg
	files := 0
	for _, u := range units {
		files += len(u.Paths)
	}
	r.Log.Info("Found %d unit(s) from %d source file(s) in %s", len(units), files, cfg.SourceDir)
	r.Log.Info("Layout: %s, naming: %s, pad: %d, stitch: %s", cfg.Layout, cfg.NameStyle, cfg.PadWidth, cfg.Stitch)
	r.Log.Info("Output mode: %s", cfg.Mode)
	if cfg.Mode == config.ModeFinal {
		r.Log.Info("Final conflict policy: %s", cfg.FinalConflict)
	}
	if cfg.DryRun {
		r.Log.Dry("Dry run: nothing will be written")
	}
}

func (r *Runner) printSummary(results []scheduler.JobResult, jobs []job, stats *RunStats) {
	if r.Out != nil && len(results) > 0 {
		planned := make(map[string]*planner.OutputPlan, len(jobs))
		for _, j := range jobs {
			planned[j.unit.ID()] = j.plan
		}
		rows := make([][]string, 0, len(results))
		for _, res := range results {
			status, files := "ok", "-"
			if p := planned[res.UnitID]; p != nil {
				files = strconv.Itoa(len(p.Active())) + "/" + strconv.Itoa(len(p.Entries))
			}
			switch {
			case res.Failed():
				status = "failed"
			case res.Skipped:
				status = "skipped"
			case r.Cfg.DryRun:
				status = "dry run"
			}
			rows = append(rows, []string{res.UnitID, status, files, errDetail(res.Err)})
		}
		fmt.Fprintln(r.Out, display.RenderTable(
			[]string{"Unit", "Status", "Files", "Detail"},
			rows,
			[]display.Align{display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignLeft},
		))
	}

	r.Log.Info("Done: %d succeeded, %d skipped, %d failed in %s",
		stats.Succeeded, stats.Skipped, stats.Failed, display.FormatDuration(stats.Elapsed))
	if r.Cfg.DryRun {
		r.Log.Info("  Files: %d would be written, %d already present", stats.FilesWritten, stats.FilesKept)
		return
	}
	r.Log.Info("  Files: %d written (%s), %d already present",
		stats.FilesWritten, display.FormatBytes(stats.BytesWritten), stats.FilesKept)
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return display.Truncate(err.Error(), 80)
}

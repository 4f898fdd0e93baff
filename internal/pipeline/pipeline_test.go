package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/ffmpeg"
	"github.com/backmassage/polysplit/internal/logging"
	"github.com/backmassage/polysplit/internal/naming"
	"github.com/backmassage/polysplit/internal/output"
	"github.com/backmassage/polysplit/internal/probe"
	"github.com/backmassage/polysplit/internal/session"
)

// --- Fakes ---

type fakeProber struct {
	byName map[string]probe.Descriptor // keyed by base name
	errs   map[string]error
}

func (f *fakeProber) Probe(_ context.Context, path string) (probe.Descriptor, error) {
	name := filepath.Base(path)
	if err := f.errs[name]; err != nil {
		return probe.Descriptor{}, err
	}
	d, ok := f.byName[name]
	if !ok {
		return probe.Descriptor{}, probe.ErrProbe
	}
	return d, nil
}

type fakeFFmpeg struct {
	mu     sync.Mutex
	calls  [][]string
	failOn []string // fail when any argument contains one of these
	seen   map[string]string
}

func (f *fakeFFmpeg) Run(_ context.Context, args []string) ffmpeg.Result {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	if f.seen == nil {
		f.seen = map[string]string{}
	}
	for i, a := range args {
		if a == "-i" && i+1 < len(args) && strings.HasSuffix(args[i+1], ".txt") {
			data, _ := os.ReadFile(args[i+1])
			f.seen[args[i+1]] = string(data)
		}
	}
	f.mu.Unlock()

	fail := false
	for _, a := range args {
		for _, s := range f.failOn {
			if strings.Contains(a, s) {
				fail = true
			}
		}
	}
	for _, p := range outputPaths(args) {
		os.WriteFile(p, []byte("pcm"), 0o644)
		if fail {
			break
		}
	}
	if fail {
		return ffmpeg.Result{ExitCode: 1, Stderr: "Error while decoding stream", Err: errors.New("exit status 1")}
	}
	return ffmpeg.Result{}
}

func (f *fakeFFmpeg) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func outputPaths(args []string) []string {
	var out []string
	for i := 0; i+2 < len(args); i++ {
		if args[i] == "-map_metadata" {
			out = append(out, args[i+2])
		}
	}
	return out
}

// --- Harness ---

type harness struct {
	t      *testing.T
	src    string
	out    string
	cfg    config.Config
	prober *fakeProber
	ff     *fakeFFmpeg
	logBuf bytes.Buffer
}

func newHarness(t *testing.T, labelLines ...string) *harness {
	t.Helper()
	base := t.TempDir()
	h := &harness{
		t:      t,
		src:    filepath.Join(base, "src"),
		out:    filepath.Join(base, "out"),
		prober: &fakeProber{byName: map[string]probe.Descriptor{}, errs: map[string]error{}},
		ff:     &fakeFFmpeg{},
	}
	if err := os.MkdirAll(h.src, 0o755); err != nil {
		t.Fatal(err)
	}
	labelsPath := filepath.Join(base, "channels.txt")
	if err := os.WriteFile(labelsPath, []byte(strings.Join(labelLines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.cfg = config.DefaultConfig()
	h.cfg.SourceDir = h.src
	h.cfg.OutputDir = h.out
	h.cfg.LabelsFile = labelsPath
	h.cfg.Jobs = 2
	h.cfg.ColorMode = config.ColorNever
	return h
}

// source creates a (placeholder) audio file and registers its descriptor.
func (h *harness) source(rel string, channels int) string {
	h.t.Helper()
	path := filepath.Join(h.src, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o644); err != nil {
		h.t.Fatal(err)
	}
	h.prober.byName[filepath.Base(path)] = probe.Descriptor{Channels: channels, SampleRate: 48000, Format: probe.S24}
	return path
}

func (h *harness) run() (RunStats, error) {
	log := logging.NewWriter(&h.logBuf, &h.logBuf)
	r := &Runner{
		Cfg:       &h.cfg,
		Log:       log,
		Prober:    h.prober,
		FFmpeg:    h.ff,
		Confirmer: output.StaticConfirmer(false),
		RunID:     "test-run",
		Out:       io.Discard,
		Scratch:   filepath.Join(h.t.TempDir(), "scratch"),
	}
	return r.Run(context.Background())
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// --- Scenarios ---

func TestRun_FlatNewMode(t *testing.T) {
	h := newHarness(t, "Kick", "# comment", "", "Snare")
	h.source("take.wav", 2)

	stats, err := h.run()
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, h.logBuf.String())
	}
	got := listDir(t, h.out)
	want := []string{"take_01_KICK.wav", "take_02_SNARE.wav"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output = %v, want %v", got, want)
	}
	if stats.Succeeded != 1 || stats.FilesWritten != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	lock, err := output.AcquireLock(h.out)
	if err != nil {
		t.Fatalf("lock still held after run: %v", err)
	}
	lock.Release()
}

func TestRun_SmartNamingDropsBareNumber(t *testing.T) {
	h := newHarness(t, "Kick", "Snare", "3")
	h.cfg.NameStyle = config.NameSmart
	h.source("set.wav", 3)

	if _, err := h.run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := listDir(t, h.out)
	want := []string{"set_01_KICK.wav", "set_02_SNARE.wav", "set_03.wav"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output = %v, want %v", got, want)
	}
}

func TestRun_ResumeWritesOnlyMissing(t *testing.T) {
	h := newHarness(t, "Kick", "Snare")
	h.cfg.Mode = config.ModeResume
	h.source("take.wav", 2)
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}
	done := filepath.Join(h.out, "take_01_KICK.wav")
	if err := os.WriteFile(done, []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := h.run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.ff.count() != 1 {
		t.Fatalf("ffmpeg calls = %d, want 1", h.ff.count())
	}
	outs := outputPaths(h.ff.calls[0])
	if len(outs) != 1 || filepath.Base(outs[0]) != "take_02_SNARE.wav" {
		t.Errorf("outputs = %v, want only channel 2", outs)
	}
	if data, _ := os.ReadFile(done); string(data) != "done" {
		t.Error("existing channel rewritten")
	}
	if stats.FilesWritten != 1 || stats.FilesKept != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// Second pass: everything present.
	h.ff = &fakeFFmpeg{}
	stats, err = h.run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if h.ff.count() != 0 || stats.Skipped != 1 {
		t.Errorf("second pass: calls=%d stats=%+v", h.ff.count(), stats)
	}
}

func TestRun_FoldersLayoutSession(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.cfg.Stitch = config.StitchDir
	h.cfg.Layout = config.LayoutFolders
	h.source("gig/00000002.WAV", 2)
	h.source("gig/00000001.WAV", 2)
	h.source("gig/notes.wav", 2)

	if _, err := h.run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, h.logBuf.String())
	}
	got := listDir(t, filepath.Join(h.out, "gig"))
	want := []string{"01_A_gig.wav", "02_B_gig.wav"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output = %v, want %v", got, want)
	}
	args := strings.Join(h.ff.calls[0], " ")
	if !strings.Contains(args, "-f concat -safe 0 -i ") {
		t.Errorf("session not read through concat: %s", args)
	}
	if len(h.ff.seen) != 1 {
		t.Fatalf("manifests seen = %d", len(h.ff.seen))
	}
	for path, content := range h.ff.seen {
		lines := strings.Split(strings.TrimSpace(content), "\n")
		if len(lines) != 2 || !strings.HasSuffix(lines[0], "00000001.WAV'") || !strings.HasSuffix(lines[1], "00000002.WAV'") {
			t.Errorf("manifest = %q", content)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("manifest not removed after job")
		}
	}
}

func TestRun_SegmentMismatchSkipsTranscode(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.cfg.Stitch = config.StitchDir
	h.source("gig/00000001.WAV", 2)
	h.source("gig/00000002.WAV", 4)

	stats, err := h.run()
	if !errors.Is(err, ErrJobFailure) {
		t.Fatalf("err = %v, want ErrJobFailure", err)
	}
	if h.ff.count() != 0 {
		t.Errorf("ffmpeg called %d times for a mismatched session", h.ff.count())
	}
	if stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(h.logBuf.String(), "00000002.WAV") {
		t.Errorf("log does not name the diverging segment:\n%s", h.logBuf.String())
	}
}

func TestRun_ReferenceProbeAbortsBeforeOutput(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.cfg.Stitch = config.StitchDir
	h.source("gig/00000001.WAV", 2)
	h.source("gig/00000002.WAV", 2)
	h.prober.errs["00000001.WAV"] = probe.ErrProbe

	_, err := h.run()
	if !errors.Is(err, session.ErrReferenceProbe) {
		t.Fatalf("err = %v, want ErrReferenceProbe", err)
	}
	if _, err := os.Stat(h.out); !os.IsNotExist(err) {
		t.Error("output created despite whole-run abort")
	}
}

func TestRun_UnitFailuresAreIsolated(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.source("good.wav", 2)
	h.source("wide.wav", 4) // label count mismatch
	h.source("bad.wav", 2)  // ffmpeg fails
	h.source("noprobe.wav", 2)
	h.prober.errs["noprobe.wav"] = probe.ErrProbe
	h.ff.failOn = []string{"bad.wav"}

	stats, err := h.run()
	if !errors.Is(err, ErrJobFailure) {
		t.Fatalf("err = %v, want ErrJobFailure", err)
	}
	if stats.Succeeded != 1 || stats.Failed != 3 {
		t.Errorf("stats = %+v", stats)
	}
	got := listDir(t, h.out)
	want := []string{"good_01_A.wav", "good_02_B.wav"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output = %v, want %v (partial files of failed job removed)", got, want)
	}
	log := h.logBuf.String()
	for _, s := range []string{"channel count", "source data is corrupt", "probe failed"} {
		if !strings.Contains(log, s) {
			t.Errorf("log missing %q:\n%s", s, log)
		}
	}
}

func TestRun_FlatPathConflict(t *testing.T) {
	h := newHarness(t, "A")
	h.source("day1/take.wav", 1)
	h.source("day2/take.wav", 1)

	stats, err := h.run()
	if !errors.Is(err, ErrJobFailure) {
		t.Fatalf("err = %v, want ErrJobFailure", err)
	}
	if stats.Succeeded != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(h.logBuf.String(), naming.ErrPathConflict.Error()) {
		t.Errorf("log missing path conflict:\n%s", h.logBuf.String())
	}
}

func TestRun_FinalModeFailureLeavesTarget(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.cfg.Mode = config.ModeFinal
	h.cfg.FinalConflict = config.ConflictBackup
	h.source("ok.wav", 2)
	h.source("bad.wav", 2)
	h.ff.failOn = []string{"bad.wav"}
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(h.out, "prev.wav"), []byte("prev"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := h.run(); !errors.Is(err, ErrJobFailure) {
		t.Fatalf("err = %v, want ErrJobFailure", err)
	}
	if got := listDir(t, h.out); strings.Join(got, ",") != "prev.wav" {
		t.Errorf("target changed: %v", got)
	}
	matches, _ := filepath.Glob(h.out + "__work_*")
	if len(matches) != 1 {
		t.Fatalf("work dirs = %v, want 1", matches)
	}
	if got := listDir(t, matches[0]); len(got) != 2 {
		t.Errorf("work dir = %v, want the successful unit's files", got)
	}
}

func TestRun_FinalModeSuccessSwaps(t *testing.T) {
	h := newHarness(t, "A")
	h.cfg.Mode = config.ModeFinal
	h.source("one.wav", 1)

	if _, err := h.run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := listDir(t, h.out); strings.Join(got, ",") != "one_01_A.wav" {
		t.Errorf("output = %v", got)
	}
	if matches, _ := filepath.Glob(h.out + "__work_*"); len(matches) != 0 {
		t.Errorf("work dir left after success: %v", matches)
	}
}

func TestRun_OverwriteRefusedWithoutConfirmation(t *testing.T) {
	h := newHarness(t, "A")
	h.cfg.Mode = config.ModeOverwrite
	h.source("one.wav", 1)
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := h.run(); !errors.Is(err, output.ErrDestructiveActionRefused) {
		t.Fatalf("err = %v, want ErrDestructiveActionRefused", err)
	}
	if h.ff.count() != 0 {
		t.Error("ffmpeg ran after refusal")
	}
}

func TestRun_RefusesOutputContainingSource(t *testing.T) {
	for _, mode := range []config.OutputMode{config.ModeOverwrite, config.ModeBackup, config.ModeFinal} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, "A")
			h.cfg.Mode = mode
			h.cfg.FinalConflict = config.ConflictOverwrite
			h.cfg.AssumeYes = true
			h.src = filepath.Join(h.out, "recordings")
			h.cfg.SourceDir = h.src
			take := h.source("take.wav", 1)

			if _, err := h.run(); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if _, err := os.Stat(take); err != nil {
				t.Errorf("source recording lost: %v", err)
			}
			if h.ff.count() != 0 {
				t.Error("ffmpeg ran despite overlapping paths")
			}
		})
	}
}

func TestRun_RefusesLabelsInsideOutput(t *testing.T) {
	h := newHarness(t, "A")
	h.cfg.Mode = config.ModeOverwrite
	h.cfg.AssumeYes = true
	h.source("take.wav", 1)
	labels := filepath.Join(h.out, "channels.txt")
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(labels, []byte("A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.cfg.LabelsFile = labels

	if _, err := h.run(); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := os.Stat(labels); err != nil {
		t.Errorf("labels file lost: %v", err)
	}
}

func TestRun_RelativeSourceNamesSessionAfterDirectory(t *testing.T) {
	h := newHarness(t, "Kick")
	h.cfg.Stitch = config.StitchDir
	h.cfg.Layout = config.LayoutFolders
	h.source("Gig2024/00000001.WAV", 1)
	chdirForTest(t, filepath.Join(h.src, "Gig2024"))
	h.cfg.SourceDir = "."

	if _, err := h.run(); err != nil {
		t.Fatalf("Run: %v\n%s", err, h.logBuf.String())
	}
	got := listDir(t, filepath.Join(h.out, "Gig2024"))
	if strings.Join(got, ",") != "01_KICK_Gig2024.wav" {
		t.Errorf("output = %v", got)
	}
	if hidden, _ := filepath.Glob(filepath.Join(h.out, ".*")); len(hidden) != 0 {
		t.Errorf("hidden outputs: %v", hidden)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.cfg.DryRun = true
	h.cfg.Mode = config.ModeOverwrite
	h.cfg.Stitch = config.StitchDir
	h.source("gig/00000001.WAV", 2)
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}

	stats, err := h.run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.ff.count() != 0 {
		t.Errorf("ffmpeg called %d times in dry run", h.ff.count())
	}
	if got := listDir(t, h.out); len(got) != 0 {
		t.Errorf("dry run wrote %v", got)
	}
	if stats.FilesWritten != 2 {
		t.Errorf("stats = %+v", stats)
	}
	log := h.logBuf.String()
	if !strings.Contains(log, "[DRY]") || !strings.Contains(log, "-f concat") {
		t.Errorf("dry run log missing command:\n%s", log)
	}
}

func TestRun_NoUnits(t *testing.T) {
	h := newHarness(t, "A")
	stats, err := h.run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Units != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := os.Stat(h.out); !os.IsNotExist(err) {
		t.Error("output created for empty source")
	}
}

func TestRun_MissingLabels(t *testing.T) {
	h := newHarness(t, "A")
	h.cfg.LabelsFile = filepath.Join(t.TempDir(), "none.txt")
	if _, err := h.run(); err == nil || !strings.Contains(err.Error(), "labels") {
		t.Errorf("err = %v, want missing labels", err)
	}
}

// --- Inspect ---

func TestInspect_CountsProblems(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.source("ok.wav", 2)
	h.source("wide.wav", 4)
	h.source("broken.wav", 2)
	h.prober.errs["broken.wav"] = probe.ErrProbe

	var out bytes.Buffer
	r := &Runner{Cfg: &h.cfg, Log: logging.NewWriter(&h.logBuf, nil), Prober: h.prober, Out: &out}
	rep, err := r.Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if rep.Units != 3 || rep.Problems != 2 {
		t.Errorf("report = %+v", rep)
	}
	table := out.String()
	for _, s := range []string{"ok", "wide", "broken", "48 kHz", "24-bit", "label count"} {
		if !strings.Contains(table, s) {
			t.Errorf("table missing %q:\n%s", s, table)
		}
	}
	if _, err := os.Stat(h.out); !os.IsNotExist(err) {
		t.Error("inspect created output")
	}
}

func TestInspect_WithoutLabelsFile(t *testing.T) {
	h := newHarness(t, "A")
	h.cfg.LabelsFile = filepath.Join(t.TempDir(), "absent.txt")
	h.source("x.wav", 6)

	r := &Runner{Cfg: &h.cfg, Log: logging.NewWriter(&h.logBuf, nil), Prober: h.prober, Out: io.Discard}
	rep, err := r.Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if rep.Problems != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestMajority(t *testing.T) {
	rows := []unitRow{
		{Desc: probe.Descriptor{SampleRate: 44100, Format: probe.S16}},
		{Desc: probe.Descriptor{SampleRate: 48000, Format: probe.S24}},
		{Desc: probe.Descriptor{SampleRate: 48000, Format: probe.S24}},
		{Err: probe.ErrProbe},
	}
	rate, f := majority(rows)
	if rate != 48000 || f != probe.S24 {
		t.Errorf("majority = %d, %v", rate, f)
	}
}

// --- Real ffmpeg integration ---

func TestRun_Integration(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	h := newHarness(t, "Left", "Right")
	h.cfg.Stitch = config.StitchDir
	seg := filepath.Join(h.src, "show")
	if err := os.MkdirAll(seg, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"00000001.WAV", "00000002.WAV"} {
		gen := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
			"-f", "lavfi", "-i", "sine=frequency=440:duration=0.3:sample_rate=48000",
			"-ac", "2", "-c:a", "pcm_s24le", "-y", filepath.Join(seg, name),
		)
		if err := gen.Run(); err != nil {
			t.Fatalf("generate %s: %v", name, err)
		}
	}

	r := NewRunner(&h.cfg, logging.NewWriter(&h.logBuf, nil))
	r.Out = io.Discard
	r.Confirmer = output.StaticConfirmer(false)
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, h.logBuf.String())
	}
	if stats.FilesWritten != 2 {
		t.Errorf("stats = %+v", stats)
	}
	for _, name := range []string{"show_01_LEFT.wav", "show_02_RIGHT.wav"} {
		d, err := probe.FFprobe{}.Probe(context.Background(), filepath.Join(h.out, name))
		if err != nil {
			t.Fatalf("probe %s: %v", name, err)
		}
		if d.Channels != 1 || d.SampleRate != 48000 || d.Format != probe.S24 {
			t.Errorf("%s = %+v", name, d)
		}
	}
}

func TestMessageTruncationKeepsUTF8(t *testing.T) {
	long := errors.New(strings.Repeat("é", 120) + "\nsecond line")
	tests := []struct {
		name string
		got  string
		max  int
	}{
		{"errDetail", errDetail(long), 80},
		{"firstLine", firstLine(long), 60},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !utf8.ValidString(tc.got) {
				t.Fatalf("invalid UTF-8: %q", tc.got)
			}
			if n := utf8.RuneCountInString(tc.got); n > tc.max {
				t.Errorf("got %d runes, want <= %d", n, tc.max)
			}
			if !strings.HasSuffix(tc.got, "…") {
				t.Errorf("missing ellipsis: %q", tc.got)
			}
		})
	}

	var buf bytes.Buffer
	printProgress(&buf, 1, 2, strings.Repeat("録", 50)+".wav")
	if !utf8.ValidString(buf.String()) {
		t.Errorf("progress line is not valid UTF-8: %q", buf.String())
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore Chdir(%s): %v", prev, err)
		}
	})
}

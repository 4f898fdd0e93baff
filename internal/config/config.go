// Package config holds runtime configuration: defaults, the optional TOML
// config file, CLI flag binding, and validation. Enum fields are closed
// string types checked once in [Config.Validate] so downstream packages
// never see an unknown value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrInvalid marks configuration problems that abort the run before any work.
var ErrInvalid = errors.New("invalid configuration")

// --- Enum types for validated string fields ---

// Layout selects how per-channel files are arranged under the output root.
type Layout string

const (
	LayoutFlat    Layout = "flat"    // All files directly under the output root (default).
	LayoutFolders Layout = "folders" // One sub-folder per source file or session.
)

// OutputMode selects how an existing output root is treated.
type OutputMode string

const (
	ModeNew       OutputMode = "new"       // Pick the first free <path>_N (default).
	ModeBackup    OutputMode = "backup"    // Rename the existing root aside with a timestamp.
	ModeOverwrite OutputMode = "overwrite" // Delete the existing root after confirmation.
	ModeResume    OutputMode = "resume"    // Reuse the existing root, skip finished files.
	ModeFinal     OutputMode = "final"     // Build in a work dir, swap into place on success.
)

// StitchMode selects how FAT32 segment chains are detected.
type StitchMode string

const (
	StitchOff StitchMode = "off" // Every audio file is processed on its own (default).
	StitchDir StitchMode = "dir" // 8-digit segment files are grouped by parent directory.
	StitchAll StitchMode = "all" // The source root is one session.
)

// NameStyle selects the label naming policy.
type NameStyle string

const (
	NameDefault NameStyle = "default" // Use labels as written (sanitized).
	NameSmart   NameStyle = "smart"   // Drop labels that only repeat the channel number.
)

// FinalConflict selects how final mode treats an existing target at swap time.
type FinalConflict string

const (
	ConflictBackup    FinalConflict = "backup"
	ConflictOverwrite FinalConflict = "overwrite"
)

// FFmpegLogLevel is passed through to ffmpeg's -loglevel.
type FFmpegLogLevel string

const (
	LogQuiet   FFmpegLogLevel = "quiet"
	LogError   FFmpegLogLevel = "error"
	LogWarning FFmpegLogLevel = "warning"
	LogInfo    FFmpegLogLevel = "info"
	LogVerbose FFmpegLogLevel = "verbose"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [LoadFile], then by CLI flags, and finally checked by
// [Config.Validate] before being passed (by pointer) to the pipeline.
type Config struct {
	// Paths.
	SourceDir  string `toml:"source"`
	OutputDir  string `toml:"output"`
	LabelsFile string `toml:"labels"` // Default: "channels.txt".

	// Naming and layout.
	Layout    Layout    `toml:"layout"`     // Default: flat.
	NameStyle NameStyle `toml:"name_style"` // Default: default.
	PadWidth  int       `toml:"pad"`        // Default: 2.

	// Discovery and output safety.
	Stitch        StitchMode    `toml:"stitch"`         // Default: off.
	Mode          OutputMode    `toml:"mode"`           // Default: new.
	FinalConflict FinalConflict `toml:"final_conflict"` // Default: backup.
	AssumeYes     bool          `toml:"yes"`

	// Execution.
	Jobs           int            `toml:"jobs"`    // 0 means DefaultJobs().
	Threads        int            `toml:"threads"` // Per-job ffmpeg -threads hint; 0 lets ffmpeg decide.
	FFmpegLogLevel FFmpegLogLevel `toml:"ffmpeg_loglevel"`
	FFmpegBinary   string         `toml:"ffmpeg"`
	FFprobeBinary  string         `toml:"ffprobe"`
	DryRun         bool           `toml:"dry_run"`

	// Display and logging.
	Verbose   bool      `toml:"verbose"`
	ColorMode ColorMode `toml:"color"`
	LogFile   string    `toml:"log_file"`

	// Subcommand scoping (not read from the config file).
	CheckOnly   bool `toml:"-"` // check: no paths required.
	InspectOnly bool `toml:"-"` // inspect: no output directory required.
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		LabelsFile:     "channels.txt",
		Layout:         LayoutFlat,
		NameStyle:      NameDefault,
		PadWidth:       2,
		Stitch:         StitchOff,
		Mode:           ModeNew,
		FinalConflict:  ConflictBackup,
		FFmpegLogLevel: LogError,
		FFmpegBinary:   "ffmpeg",
		FFprobeBinary:  "ffprobe",
		ColorMode:      ColorAuto,
	}
}

// DefaultJobs derives the worker count from the available CPUs: half of
// them, clamped to [1, 12].
func DefaultJobs() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	if n > 12 {
		return 12
	}
	return n
}

// EffectiveJobs returns Jobs, or DefaultJobs when unset.
func (c *Config) EffectiveJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return DefaultJobs()
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and required paths. Every error wraps
// [ErrInvalid].
func (c *Config) Validate() error {
	if err := c.validateEnums(); err != nil {
		return err
	}
	if c.PadWidth < 1 {
		return invalid("pad width must be at least 1 (got %d)", c.PadWidth)
	}
	if c.Jobs < 0 {
		return invalid("jobs must not be negative (got %d)", c.Jobs)
	}
	if c.Threads < 0 {
		return invalid("threads must not be negative (got %d)", c.Threads)
	}
	if c.CheckOnly {
		return nil
	}
	if strings.TrimSpace(c.SourceDir) == "" {
		return invalid("source directory is required")
	}
	if !c.InspectOnly && strings.TrimSpace(c.OutputDir) == "" {
		return invalid("output directory is required")
	}
	if strings.TrimSpace(c.LabelsFile) == "" {
		return invalid("channel labels file is required")
	}
	for _, p := range []*string{&c.SourceDir, &c.OutputDir, &c.LabelsFile, &c.LogFile} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return invalid("%v", err)
		}
		*p = expanded
	}
	c.SourceDir = NormalizeDirArg(c.SourceDir)
	c.OutputDir = NormalizeDirArg(c.OutputDir)
	return nil
}

func (c *Config) validateEnums() error {
	switch c.Layout {
	case LayoutFlat, LayoutFolders:
	default:
		return invalid("invalid layout %q (use 'flat' or 'folders')", c.Layout)
	}
	switch c.Mode {
	case ModeNew, ModeBackup, ModeOverwrite, ModeResume, ModeFinal:
	default:
		return invalid("invalid mode %q (use new, backup, overwrite, resume or final)", c.Mode)
	}
	switch c.Stitch {
	case StitchOff, StitchDir, StitchAll:
	default:
		return invalid("invalid stitch mode %q (use off, dir or all)", c.Stitch)
	}
	switch c.NameStyle {
	case NameDefault, NameSmart:
	default:
		return invalid("invalid name style %q (use 'default' or 'smart')", c.NameStyle)
	}
	switch c.FinalConflict {
	case ConflictBackup, ConflictOverwrite:
	default:
		return invalid("invalid final conflict policy %q (use 'backup' or 'overwrite')", c.FinalConflict)
	}
	switch c.FFmpegLogLevel {
	case LogQuiet, LogError, LogWarning, LogInfo, LogVerbose:
	default:
		return invalid("invalid ffmpeg log level %q (use quiet, error, warning, info or verbose)", c.FFmpegLogLevel)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return invalid("invalid color mode %q (use auto, always or never)", c.ColorMode)
	}
	return nil
}

// ValidatePaths keeps the output root and the inputs apart. The output must
// not be inside the source, or discovery would pick up its own output on
// the next run. The output must not contain the source or the labels file
// either, because backup, overwrite, and final modes rename or delete the
// output root. All arguments must come from [ResolvePath]; an empty
// labelsAbs is not checked.
func (c *Config) ValidatePaths(sourceAbs, outputAbs, labelsAbs string) error {
	if within(outputAbs, sourceAbs) {
		return invalid("output directory must not be inside source directory")
	}
	if within(sourceAbs, outputAbs) {
		return invalid("source directory must not be inside output directory %s", outputAbs)
	}
	if labelsAbs != "" && within(labelsAbs, outputAbs) {
		return invalid("labels file must not be inside output directory %s", outputAbs)
	}
	return nil
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ResolvePath returns the absolute, symlink-resolved form of path, which
// need not exist yet: the nearest existing ancestor is resolved and the
// missing tail appended.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var tail []string
	for dir := abs; ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if filepath.Dir(dir) == dir {
			return abs, nil
		}
		tail = append(tail, filepath.Base(dir))
	}
}

// ExpandPath resolves a leading "~" to the user's home directory and
// returns a cleaned path. Relative paths stay relative.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

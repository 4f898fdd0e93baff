package config

// This file binds CLI flags onto a Config. Flags are grouped into paths,
// naming, output safety, execution, and display. Enum flags use a
// pflag.Value adapter so unknown values are rejected at parse time.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// BindFlags registers every run flag on fs, writing into cfg. Defaults shown
// in help text are the values already in cfg.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	definePathFlags(fs, cfg)
	defineNamingFlags(fs, cfg)
	defineOutputFlags(fs, cfg)
	defineExecutionFlags(fs, cfg)
	defineDisplayFlags(fs, cfg)
}

// definePathFlags registers -s/--source, -o/--output, -l/--labels.
func definePathFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.SourceDir, "source", "s", cfg.SourceDir, "Source directory with polyphonic WAV/AIFF files")
	fs.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "Output root for the mono files")
	fs.StringVarP(&cfg.LabelsFile, "labels", "l", cfg.LabelsFile, "Channel labels file (one label per line)")
}

// defineNamingFlags registers --layout, --name-style, --pad.
func defineNamingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Var(newEnumValue(&cfg.Layout, LayoutFlat, LayoutFolders), "layout", "Output layout: flat | folders")
	fs.Var(newEnumValue(&cfg.NameStyle, NameDefault, NameSmart), "name-style", "Label naming: default | smart")
	fs.IntVar(&cfg.PadWidth, "pad", cfg.PadWidth, "Zero-pad width for channel numbers")
}

// defineOutputFlags registers -m/--mode, --stitch, --final-conflict, -y/--yes, -n/--dry-run.
func defineOutputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.VarP(newEnumValue(&cfg.Mode, ModeNew, ModeBackup, ModeOverwrite, ModeResume, ModeFinal),
		"mode", "m", "Existing output handling: new | backup | overwrite | resume | final")
	fs.Var(newEnumValue(&cfg.Stitch, StitchOff, StitchDir, StitchAll), "stitch", "Segment stitching: off | dir | all")
	fs.Var(newEnumValue(&cfg.FinalConflict, ConflictBackup, ConflictOverwrite),
		"final-conflict", "Final mode swap policy for an existing target: backup | overwrite")
	fs.BoolVarP(&cfg.AssumeYes, "yes", "y", cfg.AssumeYes, "Confirm destructive actions without prompting")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", cfg.DryRun, "Log every action without executing it")
}

// defineExecutionFlags registers -j/--jobs, --threads, --ffmpeg-loglevel, --ffmpeg, --ffprobe.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Jobs, "jobs", "j", cfg.Jobs, fmt.Sprintf("Parallel ffmpeg jobs (0 = auto, currently %d)", DefaultJobs()))
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "ffmpeg -threads hint per job (0 = ffmpeg default)")
	fs.Var(newEnumValue(&cfg.FFmpegLogLevel, LogQuiet, LogError, LogWarning, LogInfo, LogVerbose),
		"ffmpeg-loglevel", "ffmpeg log level: quiet | error | warning | info | verbose")
	fs.StringVar(&cfg.FFmpegBinary, "ffmpeg", cfg.FFmpegBinary, "ffmpeg executable")
	fs.StringVar(&cfg.FFprobeBinary, "ffprobe", cfg.FFprobeBinary, "ffprobe executable")
}

// defineDisplayFlags registers -v/--verbose, --color, --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.Var(newEnumValue(&cfg.ColorMode, ColorAuto, ColorAlways, ColorNever), "color", "Colored logs: auto | always | never")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
}

// ReapplyChanged re-sets every flag the user passed explicitly. Call it
// after [LoadFile] has overwritten cfg so that the command line wins over
// the config file.
func ReapplyChanged(fs *pflag.FlagSet, changed map[string]string) error {
	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("%w: --%s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// ChangedFlags snapshots the explicitly set flags as name -> string value.
func ChangedFlags(fs *pflag.FlagSet) map[string]string {
	changed := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})
	return changed
}

// enumValue adapts a closed string enum to pflag.Value.
type enumValue[T ~string] struct {
	p       *T
	allowed []T
}

func newEnumValue[T ~string](p *T, allowed ...T) *enumValue[T] {
	return &enumValue[T]{p: p, allowed: allowed}
}

func (e *enumValue[T]) String() string { return string(*e.p) }

func (e *enumValue[T]) Type() string { return "string" }

func (e *enumValue[T]) Set(s string) error {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range e.allowed {
		if v == a {
			*e.p = v
			return nil
		}
	}
	names := make([]string, len(e.allowed))
	for i, a := range e.allowed {
		names[i] = string(a)
	}
	return fmt.Errorf("invalid value %q (use %s)", s, strings.Join(names, ", "))
}

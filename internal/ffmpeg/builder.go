package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/planner"
)

// Options are the run-wide settings applied to every command.
type Options struct {
	Binary   string                // Default: "ffmpeg".
	LogLevel config.FFmpegLogLevel // Default: error.
	Threads  int                   // 0 omits -threads.
}

// OptionsFromConfig extracts the ffmpeg settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Binary:   cfg.FFmpegBinary,
		LogLevel: cfg.FFmpegLogLevel,
		Threads:  cfg.Threads,
	}
}

// Input is either one source file or a concat manifest listing segments.
type Input struct {
	Path     string // Single source file.
	Manifest string // Concat manifest; takes precedence over Path.
}

// Build constructs the complete ffmpeg argument slice, binary first, for
// the active entries of plan. Skipped entries get no output.
//
//	ffmpeg -hide_banner -nostdin -y -loglevel L [-threads N]
//	       (-i src | -f concat -safe 0 -i manifest)
//	       -filter_complex GRAPH
//	       -map [chN] -c:a CODEC -map_metadata 0 OUT ...
func Build(opts Options, in Input, plan *planner.OutputPlan) []string {
	active := plan.Active()
	args := make([]string, 0, 16+7*len(active))

	// --- Preamble ---
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	level := opts.LogLevel
	if level == "" {
		level = config.LogError
	}
	args = append(args, binary, "-hide_banner", "-nostdin", "-y", "-loglevel", string(level))

	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}

	// --- Input ---
	if in.Manifest != "" {
		args = append(args, "-f", "concat", "-safe", "0", "-i", in.Manifest)
	} else {
		args = append(args, "-i", in.Path)
	}

	// --- Split graph ---
	args = append(args, "-filter_complex", plan.FilterGraph)

	// --- One output per active channel ---
	for _, e := range active {
		args = append(args,
			"-map", planner.StreamLabel(e.Channel),
			"-c:a", plan.Codec,
			"-map_metadata", "0",
			e.Path,
		)
	}
	return args
}

// CommandLine renders args for logs, quoting arguments that contain
// spaces or shell metacharacters.
func CommandLine(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"|;&$()[]*?<>") {
			parts[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}

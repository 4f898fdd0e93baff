// Package check provides system diagnostics (the check subcommand) and
// pre-pipeline dependency validation (CheckDeps) for ffmpeg, ffprobe, the
// PCM encoders, and output disk space.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/display"
	"github.com/backmassage/polysplit/internal/probe"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrPCMEncodeFailed = errors.New("PCM test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(bool, string, ...any)
}

// pcmCodecs lists every encoder polysplit can select.
var pcmCodecs = []probe.SampleFormat{probe.S16, probe.S24, probe.S32, probe.F32, probe.F64}

// RunCheck runs the interactive check flow: prints availability of ffmpeg,
// ffprobe, each PCM encoder, and free space at the output path. It is
// informational only and returns the number of problems found.
func RunCheck(cfg *config.Config, log Logger) int {
	log.Info("=== System Check ===")

	problems := 0
	ffmpeg := binary(cfg.FFmpegBinary, "ffmpeg")
	ffprobe := binary(cfg.FFprobeBinary, "ffprobe")

	if !checkVersion(log, ffmpeg) {
		problems++
	}
	if !checkVersion(log, ffprobe) {
		problems++
	}
	problems += checkPCMEncoders(log, ffmpeg, cfg.Verbose)

	if cfg.OutputDir != "" {
		checkFreeSpace(log, cfg.OutputDir)
	}
	return problems
}

// checkVersion verifies name is runnable and logs its version string.
func checkVersion(log Logger, name string) bool {
	if _, err := exec.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return false
	}
	out, err := exec.Command(name, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s", firstLine)
	return true
}

// checkPCMEncoders runs a short test encode for every PCM codec.
func checkPCMEncoders(log Logger, ffmpeg string, verbose bool) int {
	log.Info("PCM encoders:")
	failed := 0
	for _, f := range pcmCodecs {
		codec := f.Codec()
		log.Debug(verbose, "  %s", strings.Join(pcmTestArgs(codec), " "))
		if runSilent(ffmpeg, pcmTestArgs(codec)...) {
			log.Success("  %s (%s)", codec, f)
		} else {
			log.Error("  %s (%s) test encode failed", codec, f)
			failed++
		}
	}
	return failed
}

func checkFreeSpace(log Logger, dir string) {
	free, err := FreeBytes(dir)
	if err != nil {
		log.Warn("Free space at %s: unknown (%v)", dir, err)
		return
	}
	log.Info("Free space at %s: %s", dir, display.FormatBytes(int64(free)))
}

// CheckDeps is the pre-pipeline validation: it verifies that the configured
// ffmpeg and ffprobe binaries are runnable and that the PCM encoder for
// 24-bit audio works. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	ffmpeg := binary(cfg.FFmpegBinary, "ffmpeg")
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, ffmpeg)
	}
	ffprobe := binary(cfg.FFprobeBinary, "ffprobe")
	if _, err := exec.LookPath(ffprobe); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, ffprobe)
	}
	if !runSilent(ffmpeg, pcmTestArgs(probe.S24.Codec())...) {
		return fmt.Errorf("%w: %s", ErrPCMEncodeFailed, probe.S24.Codec())
	}
	return nil
}

// --- internal helpers ---

func binary(configured, fallback string) string {
	if b := strings.TrimSpace(configured); b != "" {
		return b
	}
	return fallback
}

// pcmTestArgs returns the ffmpeg arguments for a minimal stereo-to-mono
// split encoded with codec.
func pcmTestArgs(codec string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-filter_complex", "[0:a]asplit=1[s1];[s1]pan=mono|c0=c0[ch1]",
		"-map", "[ch1]", "-c:a", codec,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// Package pipeline orchestrates a polysplit run: load labels, discover and
// validate units, resolve the output root, plan every unit, run the ffmpeg
// jobs on a bounded pool, finalize the output, and report a summary.
//
// Files:
//   - runner.go: Runner and the per-unit job
//   - inspect.go: Inspect, the read-only discovery and probe report
//   - stats.go: RunStats
package pipeline

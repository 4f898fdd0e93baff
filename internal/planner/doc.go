// Package planner turns a unit, its probed descriptor, and the label table
// into an OutputPlan: one entry per channel with its label and output path,
// the PCM codec to write, and the ffmpeg filter graph that splits the
// source into mono streams.
//
// Files:
//   - types.go: OutputPlan, Entry, Options, ChannelCountError
//   - planner.go: Build
//   - filter.go: SplitGraph
//   - estimation.go: EstimateBytes for free-space checks
package planner

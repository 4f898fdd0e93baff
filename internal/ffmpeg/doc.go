// Package ffmpeg builds and executes the single ffmpeg command that splits
// one unit into mono PCM files.
//
// Files:
//   - builder.go: Build, the argument skeleton (input, filter graph, one
//     map/codec/metadata group per active channel)
//   - manifest.go: concat demuxer manifests for stitched sessions
//   - executor.go: Runner and the exec-backed implementation
//   - errors.go: stderr classification for one-line failure hints
package ffmpeg

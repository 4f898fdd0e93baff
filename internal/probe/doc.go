// Package probe inspects source audio with ffprobe and reduces the result
// to a typed [Descriptor]: channel count, sample rate, and the sample
// format that output files must keep.
//
// A single JSON ffprobe call is made per file. [ParseJSON] is exported so
// tests can exercise the mapping without an ffprobe binary.
package probe

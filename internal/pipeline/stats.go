package pipeline

import "time"

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Units        int
	Succeeded    int
	Skipped      int // Units with nothing left to do.
	Failed       int
	FilesWritten int // Mono files produced (or that would be, in a dry run).
	FilesKept    int // Mono files left in place by resume.
	BytesWritten int64
	Elapsed      time.Duration
}

// OK reports whether every unit succeeded or was skipped.
func (s *RunStats) OK() bool { return s.Failed == 0 }

package planner

import (
	"os"

	"github.com/backmassage/polysplit/internal/session"
)

// wavHeaderBytes is a generous per-file allowance for RIFF/WAVE headers
// and the copied metadata chunks.
const wavHeaderBytes = 4096

// EstimateBytes predicts how much space the active entries of plan will
// occupy. Output PCM keeps the source sample format, so each mono file is
// roughly the source payload divided by the channel count. Sources that
// cannot be stat'ed count as zero.
func EstimateBytes(u session.Unit, plan *OutputPlan) int64 {
	channels := int64(plan.Descriptor.Channels)
	if channels <= 0 {
		return 0
	}
	var source int64
	for _, p := range u.Paths {
		if info, err := os.Stat(p); err == nil {
			source += info.Size()
		}
	}
	active := int64(len(plan.Active()))
	return source/channels*active + active*wavHeaderBytes
}

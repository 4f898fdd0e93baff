package planner

import (
	"fmt"
	"strings"
)

// StreamLabel is the filter graph output pad for a 1-based channel.
func StreamLabel(channel int) string {
	return fmt.Sprintf("[ch%d]", channel)
}

// SplitGraph builds a filter_complex that fans the first audio input out
// into one mono stream per listed 1-based channel:
//
//	[0:a]asplit=2[s1][s2];[s1]pan=mono|c0=c0[ch1];[s2]pan=mono|c0=c2[ch3]
//
// pan selects a source channel without mixing or gain change. An empty
// list yields an empty graph.
func SplitGraph(channels []int) string {
	if len(channels) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[0:a]asplit=%d", len(channels))
	for i := range channels {
		fmt.Fprintf(&b, "[s%d]", i+1)
	}
	for i, ch := range channels {
		fmt.Fprintf(&b, ";[s%d]pan=mono|c0=c%d%s", i+1, ch-1, StreamLabel(ch))
	}
	return b.String()
}

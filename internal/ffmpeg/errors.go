package ffmpeg

import (
	"regexp"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr into short hints.
// Checked in order by [Diagnose]; the first match wins.
var diagnoses = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`(?i)No space left on device`), "output disk is full"},
	{regexp.MustCompile(`(?i)Permission denied`), "permission denied on input or output"},
	{regexp.MustCompile(`(?i)No such file or directory`), "input or output path does not exist"},
	{regexp.MustCompile(`(?i)Unsafe file name|Impossible to open .*concat|Line \d+: unknown keyword`), "concat manifest was rejected"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|could not find codec parameters|Invalid RIFF header`), "source is not a readable audio file"},
	{regexp.MustCompile(`(?i)(Unknown|Requested) encoder|Encoder not found`), "PCM encoder unavailable in this ffmpeg build"},
	{regexp.MustCompile(`(?i)pan.*(Invalid|out of range)|Output channel .* not found`), "channel selection failed; source channel count changed mid-run"},
	{regexp.MustCompile(`(?i)Error while decoding|corrupt`), "source data is corrupt or truncated"},
}

// Diagnose returns a one-line hint for a failed run, or "" when stderr
// matches no known failure.
func Diagnose(stderr string) string {
	for _, d := range diagnoses {
		if d.re.MatchString(stderr) {
			return d.hint
		}
	}
	return ""
}

// LastLine returns the last non-empty stderr line, which for ffmpeg is
// usually the fatal message.
func LastLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

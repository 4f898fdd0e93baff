package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrProbe marks a source whose required media properties could not be
// determined.
var ErrProbe = errors.New("probe failed")

// Prober reports the media properties of a file.
type Prober interface {
	Probe(ctx context.Context, path string) (Descriptor, error)
}

// FFprobe is the [Prober] backed by the ffprobe binary.
type FFprobe struct {
	Binary string // Default: "ffprobe".
}

var _ Prober = FFprobe{}

// Probe runs a single ffprobe JSON call for the first audio stream of path.
func (p FFprobe) Probe(ctx context.Context, path string) (Descriptor, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,channels,sample_rate,sample_fmt,bits_per_sample,bits_per_raw_sample",
		"-of", "json",
		"--", path,
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Descriptor{}, fmt.Errorf("%w: %s: ffprobe: %v: %s", ErrProbe, path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Descriptor{}, fmt.Errorf("%w: %s: ffprobe: %v", ErrProbe, path, err)
	}

	d, err := ParseJSON(out)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseJSON converts raw ffprobe JSON output into a Descriptor. Channel
// count and sample rate are required.
func ParseJSON(data []byte) (Descriptor, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, fmt.Errorf("%w: parse ffprobe JSON: %v", ErrProbe, err)
	}
	var s *ffprobeStream
	for i := range raw.Streams {
		if raw.Streams[i].CodecType == "" || raw.Streams[i].CodecType == "audio" {
			s = &raw.Streams[i]
			break
		}
	}
	if s == nil {
		return Descriptor{}, fmt.Errorf("%w: no audio stream", ErrProbe)
	}
	if s.Channels <= 0 {
		return Descriptor{}, fmt.Errorf("%w: channel count unavailable", ErrProbe)
	}
	rate := parseInt(s.SampleRate)
	if rate <= 0 {
		return Descriptor{}, fmt.Errorf("%w: sample rate unavailable", ErrProbe)
	}

	bits := parseInt(s.BitsPerRawSample)
	if bits <= 0 {
		bits = s.BitsPerSample
	}
	return Descriptor{
		Channels:   s.Channels,
		SampleRate: rate,
		Format:     ResolveFormat(bits, s.SampleFmt, s.CodecName),
	}, nil
}

// ResolveFormat maps ffprobe's bit depth, sample_fmt and codec_name to a
// SampleFormat. An explicit bit depth wins over name heuristics; at 32 bits
// a float sample format or codec selects F32. Unknown input falls back to
// S32.
func ResolveFormat(bits int, sampleFmt, codecName string) SampleFormat {
	sampleFmt = strings.ToLower(strings.TrimSpace(sampleFmt))
	codecName = strings.ToLower(strings.TrimSpace(codecName))
	isFloat := strings.HasPrefix(sampleFmt, "flt") || strings.Contains(codecName, "f32")
	isDouble := strings.HasPrefix(sampleFmt, "dbl") || strings.Contains(codecName, "f64")

	switch bits {
	case 16:
		return S16
	case 24:
		return S24
	case 32:
		if isFloat {
			return F32
		}
		return S32
	case 64:
		return F64
	}

	switch {
	case isDouble:
		return F64
	case isFloat:
		return F32
	case strings.Contains(codecName, "s24"):
		return S24
	case strings.HasPrefix(sampleFmt, "s16") || strings.Contains(codecName, "s16"):
		return S16
	case strings.HasPrefix(sampleFmt, "s32") || strings.Contains(codecName, "s32"):
		return S32
	}
	return S32
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecName        string `json:"codec_name"`
	CodecType        string `json:"codec_type"`
	Channels         int    `json:"channels"`
	SampleRate       string `json:"sample_rate"`
	SampleFmt        string `json:"sample_fmt"`
	BitsPerSample    int    `json:"bits_per_sample"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
}

// ffprobe returns most numbers as strings.
func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

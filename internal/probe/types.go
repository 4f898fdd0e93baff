package probe

import "fmt"

// SampleFormat is the PCM sample representation of a source file.
type SampleFormat int

const (
	S32 SampleFormat = iota // 32-bit signed integer; the fallback when nothing is known.
	S16
	S24
	F32
	F64
)

var sampleFormatInfo = map[SampleFormat]struct {
	codec string
	label string
}{
	S16: {"pcm_s16le", "16-bit int"},
	S24: {"pcm_s24le", "24-bit int"},
	S32: {"pcm_s32le", "32-bit int"},
	F32: {"pcm_f32le", "32-bit float"},
	F64: {"pcm_f64le", "64-bit float"},
}

// Codec returns the ffmpeg PCM encoder that reproduces the format exactly.
func (f SampleFormat) Codec() string {
	if info, ok := sampleFormatInfo[f]; ok {
		return info.codec
	}
	return sampleFormatInfo[S32].codec
}

func (f SampleFormat) String() string {
	if info, ok := sampleFormatInfo[f]; ok {
		return info.label
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// Descriptor describes the first audio stream of a source file.
type Descriptor struct {
	Channels   int
	SampleRate int
	Format     SampleFormat
}

// Codec is shorthand for d.Format.Codec().
func (d Descriptor) Codec() string { return d.Format.Codec() }

func (d Descriptor) String() string {
	return fmt.Sprintf("%d ch, %d Hz, %s", d.Channels, d.SampleRate, d.Format)
}

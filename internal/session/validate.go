package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/polysplit/internal/probe"
)

var (
	// ErrSegmentMismatch marks a session whose segments disagree on
	// channel count or sample rate.
	ErrSegmentMismatch = errors.New("segment mismatch")

	// ErrReferenceProbe marks a failure to probe the first segment of a
	// session. The run cannot continue without a reference.
	ErrReferenceProbe = errors.New("reference segment probe failed")
)

// MismatchError names the segment that diverged from the reference.
type MismatchError struct {
	Path     string
	Field    string
	Expected int
	Actual   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s: %s %d, expected %d", ErrSegmentMismatch, e.Path, e.Field, e.Actual, e.Expected)
}

func (e *MismatchError) Unwrap() error { return ErrSegmentMismatch }

// Validate probes every segment and returns the shared descriptor. The
// first segment is the reference; the first later segment with a different
// channel count or sample rate fails the session.
func Validate(ctx context.Context, p probe.Prober, segments []string) (probe.Descriptor, error) {
	if len(segments) == 0 {
		return probe.Descriptor{}, errors.New("validate: no segments")
	}
	ref, err := p.Probe(ctx, segments[0])
	if err != nil {
		return probe.Descriptor{}, fmt.Errorf("%w: %w", ErrReferenceProbe, err)
	}
	for _, seg := range segments[1:] {
		d, err := p.Probe(ctx, seg)
		if err != nil {
			return probe.Descriptor{}, err
		}
		if d.Channels != ref.Channels {
			return probe.Descriptor{}, &MismatchError{Path: seg, Field: "channels", Expected: ref.Channels, Actual: d.Channels}
		}
		if d.SampleRate != ref.SampleRate {
			return probe.Descriptor{}, &MismatchError{Path: seg, Field: "sample rate", Expected: ref.SampleRate, Actual: d.SampleRate}
		}
	}
	return ref, nil
}

// Describe returns the descriptor for any unit: a direct probe for a
// single file, or full segment validation for a session.
func Describe(ctx context.Context, p probe.Prober, u Unit) (probe.Descriptor, error) {
	if u.Kind == StitchedSession {
		return Validate(ctx, p, u.Paths)
	}
	return p.Probe(ctx, u.Paths[0])
}

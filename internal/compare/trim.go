package compare

import (
	"github.com/speechcoach/tonegrade/internal/pitch"
	"github.com/speechcoach/tonegrade/internal/vad"
)

// trimCurve drops frames before the first speech segment and after the
// last one. Frame times are preserved, so hint timestamps stay valid;
// interior silence is left to the alignment engine's unvoiced penalty.
// With no segments the curve is returned unchanged.
func trimCurve(curve *pitch.Curve, segments []vad.Segment) *pitch.Curve {
	if len(segments) == 0 || curve.Len() == 0 {
		return curve
	}
	start := segments[0].Start
	end := segments[len(segments)-1].End

	lo := 0
	hi := curve.Len()
	for lo < hi && curve.Samples[lo].Time < start {
		lo++
	}
	for hi > lo && curve.Samples[hi-1].Time > end {
		hi--
	}
	if lo >= hi {
		return &pitch.Curve{Step: curve.Step}
	}
	return &pitch.Curve{Step: curve.Step, Samples: curve.Samples[lo:hi]}
}

// voicedSegments derives speech segments from a curve's voiced runs. It
// stands in for VAD when the caller supplied a precomputed curve instead
// of raw audio, e.g. for the reference side.
func voicedSegments(curve *pitch.Curve, minDuration float64) []vad.Segment {
	var segments []vad.Segment
	inRun := false
	var runStart float64
	flush := func(end float64) {
		if inRun && end-runStart >= minDuration {
			segments = append(segments, vad.Segment{Start: runStart, End: end})
		}
		inRun = false
	}
	for _, s := range curve.Samples {
		if s.Voiced && !inRun {
			runStart = s.Time
			inRun = true
		} else if !s.Voiced {
			flush(s.Time)
		}
	}
	flush(curve.Duration() + curve.Step)
	return segments
}

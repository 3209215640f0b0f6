package vad

import "fmt"

// Segment is one contiguous voiced region, [Start, End) in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Validate checks that segments are well-formed, non-overlapping and
// time-ordered.
func Validate(segments []Segment) error {
	for i, s := range segments {
		if s.Start >= s.End {
			return fmt.Errorf("segment %d: start %.3f not before end %.3f", i, s.Start, s.End)
		}
		if i > 0 && s.Start < segments[i-1].End {
			return fmt.Errorf("segment %d: overlaps previous segment", i)
		}
	}
	return nil
}

// TotalDuration sums the voiced time across segments.
func TotalDuration(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}

// SpeechRatio returns the fraction of clipDuration covered by segments.
func SpeechRatio(segments []Segment, clipDuration float64) float64 {
	if clipDuration <= 0 {
		return 0
	}
	return TotalDuration(segments) / clipDuration
}

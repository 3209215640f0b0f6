package pitch

import (
	"errors"
	"fmt"
	"math"
)

// Sample is one frame of the fundamental-frequency track. Freq is in Hz
// and only meaningful when Voiced is true; unvoiced frames never carry a
// zero frequency into downstream statistics.
type Sample struct {
	Time   float64 `json:"time"`
	Freq   float64 `json:"freq"`
	Voiced bool    `json:"voiced"`
}

// Curve is an immutable fundamental-frequency track at a fixed time step.
type Curve struct {
	Step    float64  `json:"step"`
	Samples []Sample `json:"samples"`
}

// NewCurve validates and wraps a sample sequence. Times must be strictly
// increasing and voiced frequencies positive.
func NewCurve(step float64, samples []Sample) (*Curve, error) {
	if step <= 0 {
		return nil, errors.New("time step must be positive")
	}
	for i, s := range samples {
		if i > 0 && s.Time <= samples[i-1].Time {
			return nil, fmt.Errorf("sample %d: time %.4f not increasing", i, s.Time)
		}
		if s.Voiced && s.Freq <= 0 {
			return nil, fmt.Errorf("sample %d: voiced frame with non-positive frequency", i)
		}
	}
	return &Curve{Step: step, Samples: samples}, nil
}

// Len returns the number of frames.
func (c *Curve) Len() int { return len(c.Samples) }

// Duration returns the time of the last frame, or 0 for an empty curve.
func (c *Curve) Duration() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	return c.Samples[len(c.Samples)-1].Time
}

// VoicedCount returns the number of voiced frames.
func (c *Curve) VoicedCount() int {
	n := 0
	for _, s := range c.Samples {
		if s.Voiced {
			n++
		}
	}
	return n
}

// VoicedRatio returns the fraction of frames that are voiced.
func (c *Curve) VoicedRatio() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	return float64(c.VoicedCount()) / float64(len(c.Samples))
}

// VoicedFreqs returns the frequencies of the voiced frames, in order.
func (c *Curve) VoicedFreqs() []float64 {
	out := make([]float64, 0, len(c.Samples))
	for _, s := range c.Samples {
		if s.Voiced {
			out = append(out, s.Freq)
		}
	}
	return out
}

// Stats returns mean and standard deviation over the voiced frames.
// Both are 0 when the curve has no voiced frames.
func (c *Curve) Stats() (mean, std float64) {
	freqs := c.VoicedFreqs()
	if len(freqs) == 0 {
		return 0, 0
	}
	for _, f := range freqs {
		mean += f
	}
	mean /= float64(len(freqs))
	for _, f := range freqs {
		std += (f - mean) * (f - mean)
	}
	std = math.Sqrt(std / float64(len(freqs)))
	return mean, std
}

// SemitoneRange returns the voiced pitch range max-min expressed in
// semitones. A curve with fewer than two voiced frames has range 0.
func (c *Curve) SemitoneRange() float64 {
	minF, maxF := math.Inf(1), math.Inf(-1)
	n := 0
	for _, s := range c.Samples {
		if !s.Voiced {
			continue
		}
		n++
		if s.Freq < minF {
			minF = s.Freq
		}
		if s.Freq > maxF {
			maxF = s.Freq
		}
	}
	if n < 2 || minF <= 0 {
		return 0
	}
	return 12 * math.Log2(maxF/minF)
}

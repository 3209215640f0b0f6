package audio

import "math"

const (
	// Target RMS level for amplitude normalization, about -20 dBFS.
	targetRMS = 0.1
	// Upper bound on the normalization gain so a near-silent recording is
	// not amplified into pure noise.
	maxGain = 5.0
	// Headroom guard after normalization.
	clipCeiling = 0.95

	preEmphasisCoeff = 0.97
)

// RMS returns the root-mean-square level of the samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Normalize scales the clip towards the target RMS level. The gain is
// capped at maxGain and the result is rescaled if it would clip. A new
// Clip is returned; the input is not modified.
func Normalize(clip *Clip) *Clip {
	rms := RMS(clip.Samples)
	if rms == 0 {
		out := make([]float64, len(clip.Samples))
		copy(out, clip.Samples)
		return &Clip{Samples: out, SampleRate: clip.SampleRate}
	}

	gain := targetRMS / rms
	if gain > maxGain {
		gain = maxGain
	}

	out := make([]float64, len(clip.Samples))
	peak := 0.0
	for i, s := range clip.Samples {
		out[i] = s * gain
		if a := math.Abs(out[i]); a > peak {
			peak = a
		}
	}
	if peak > clipCeiling {
		rescale := clipCeiling / peak
		for i := range out {
			out[i] *= rescale
		}
	}
	return &Clip{Samples: out, SampleRate: clip.SampleRate}
}

// PreEmphasis applies the first-order high-pass filter
// y[n] = x[n] - 0.97*x[n-1], which sharpens the periodicity structure the
// pitch tracker relies on. A new Clip is returned.
func PreEmphasis(clip *Clip) *Clip {
	out := make([]float64, len(clip.Samples))
	if len(clip.Samples) > 0 {
		out[0] = clip.Samples[0]
		for i := 1; i < len(clip.Samples); i++ {
			out[i] = clip.Samples[i] - preEmphasisCoeff*clip.Samples[i-1]
		}
	}
	return &Clip{Samples: out, SampleRate: clip.SampleRate}
}

package pitch

import (
	"errors"
	"sort"

	"github.com/mjibson/go-dsp/fft"

	"github.com/speechcoach/tonegrade/internal/audio"
)

// ErrInsufficientSignal reports that the input was too short for a single
// analysis frame, or that no voiced frame was found at all.
var ErrInsufficientSignal = errors.New("insufficient voiced signal")

// Config bounds the tracker to the human voice band. The defaults match
// a 75-600 Hz search range at a 10 ms step.
type Config struct {
	MinFreq          float64 // Hz, lower edge of the search band
	MaxFreq          float64 // Hz, upper edge of the search band
	TimeStep         float64 // seconds between frames
	WindowSec        float64 // analysis window length in seconds
	VoicingThreshold float64 // minimum normalized autocorrelation peak
}

func DefaultConfig() Config {
	return Config{
		MinFreq:          75,
		MaxFreq:          600,
		TimeStep:         0.010,
		WindowSec:        0.040,
		VoicingThreshold: 0.30,
	}
}

// Extractor converts raw audio into a fundamental-frequency Curve using
// normalized autocorrelation computed through the FFT.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.MinFreq <= 0 || cfg.MaxFreq <= cfg.MinFreq {
		cfg = DefaultConfig()
	}
	return &Extractor{cfg: cfg}
}

// Track produces the pitch curve for a clip. When the clip is shorter than
// one analysis frame, or no frame is voiced, the returned curve has zero
// voiced frames and the error is ErrInsufficientSignal; the caller decides
// whether that is fatal.
func (e *Extractor) Track(clip *audio.Clip) (*Curve, error) {
	cfg := e.cfg
	rate := clip.SampleRate
	frameLen := int(cfg.WindowSec * float64(rate))
	hop := int(cfg.TimeStep * float64(rate))
	if frameLen <= 0 || hop <= 0 {
		return nil, errors.New("invalid frame geometry for sample rate")
	}

	if len(clip.Samples) < frameLen {
		return &Curve{Step: cfg.TimeStep}, ErrInsufficientSignal
	}

	prepped := audio.PreEmphasis(audio.Normalize(clip))

	fftSize := nextPow2(2 * frameLen)
	minLag := int(float64(rate) / cfg.MaxFreq)
	maxLag := int(float64(rate) / cfg.MinFreq)
	if maxLag >= frameLen {
		maxLag = frameLen - 1
	}
	if minLag < 2 {
		minLag = 2
	}

	samples := make([]Sample, 0, len(prepped.Samples)/hop)
	frame := make([]float64, fftSize)
	frameIdx := 0
	for start := 0; start+frameLen <= len(prepped.Samples); start += hop {
		t := float64(frameIdx) * cfg.TimeStep
		frameIdx++

		// Zero-padded, mean-removed frame.
		var mean float64
		for i := 0; i < frameLen; i++ {
			mean += prepped.Samples[start+i]
		}
		mean /= float64(frameLen)
		for i := 0; i < frameLen; i++ {
			frame[i] = prepped.Samples[start+i] - mean
		}
		for i := frameLen; i < fftSize; i++ {
			frame[i] = 0
		}

		freq, voiced := e.trackFrame(frame, rate, minLag, maxLag)
		samples = append(samples, Sample{Time: t, Freq: freq, Voiced: voiced})
	}

	smoothVoiced(samples)

	curve := &Curve{Step: cfg.TimeStep, Samples: samples}
	if curve.VoicedCount() == 0 {
		return curve, ErrInsufficientSignal
	}
	return curve, nil
}

// trackFrame finds the dominant lag of one zero-padded frame via the
// autocorrelation theorem: IFFT of the power spectrum.
func (e *Extractor) trackFrame(frame []float64, rate, minLag, maxLag int) (float64, bool) {
	spec := fft.FFTReal(frame)
	for i, c := range spec {
		re := real(c)
		im := imag(c)
		spec[i] = complex(re*re+im*im, 0)
	}
	acorr := fft.IFFT(spec)

	r0 := real(acorr[0])
	if r0 < 1e-9 {
		return 0, false
	}

	bestLag := 0
	bestVal := 0.0
	for lag := minLag; lag <= maxLag && lag < len(acorr); lag++ {
		v := real(acorr[lag]) / r0
		if v > bestVal {
			bestVal = v
			bestLag = lag
		}
	}
	if bestLag == 0 || bestVal < e.cfg.VoicingThreshold {
		return 0, false
	}

	refined := parabolicPeak(acorr, bestLag)
	freq := float64(rate) / refined
	if freq < e.cfg.MinFreq || freq > e.cfg.MaxFreq {
		return 0, false
	}
	return freq, true
}

// parabolicPeak interpolates the true peak position between integer lags.
func parabolicPeak(acorr []complex128, lag int) float64 {
	if lag <= 0 || lag+1 >= len(acorr) {
		return float64(lag)
	}
	y0 := real(acorr[lag-1])
	y1 := real(acorr[lag])
	y2 := real(acorr[lag+1])
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return float64(lag)
	}
	delta := 0.5 * (y0 - y2) / denom
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}
	return float64(lag) + delta
}

// smoothVoiced applies a width-3 median filter across the voiced frames,
// knocking out single-frame octave glitches without moving contour edges.
func smoothVoiced(samples []Sample) {
	idx := make([]int, 0, len(samples))
	vals := make([]float64, 0, len(samples))
	for i, s := range samples {
		if s.Voiced {
			idx = append(idx, i)
			vals = append(vals, s.Freq)
		}
	}
	if len(vals) <= 2 {
		return
	}
	smoothed := make([]float64, len(vals))
	copy(smoothed, vals)
	win := make([]float64, 3)
	for i := 1; i < len(vals)-1; i++ {
		win[0], win[1], win[2] = vals[i-1], vals[i], vals[i+1]
		sort.Float64s(win)
		smoothed[i] = win[1]
	}
	for k, i := range idx {
		samples[i].Freq = smoothed[k]
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

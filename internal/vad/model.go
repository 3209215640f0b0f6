package vad

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mjibson/go-dsp/fft"

	"github.com/speechcoach/tonegrade/internal/audio"
)

// ErrResourceUnavailable reports a missing or corrupt detection model
// artifact. The caller is expected to fall back to the energy method for
// the process lifetime.
var ErrResourceUnavailable = errors.New("vad model artifact unavailable")

// Model is a trained frame classifier over log spectral band energies:
// a logistic regression whose weights were fit offline. The artifact is
// loaded once at startup and is read-only afterwards, so concurrent
// segmenters may share it.
type Model struct {
	BandEdgesHz []float64 `json:"band_edges_hz"`
	Weights     []float64 `json:"weights"`
	Bias        float64   `json:"bias"`
	Threshold   float64   `json:"threshold"`
}

// LoadModel reads and validates a model artifact. Any failure wraps
// ErrResourceUnavailable so the caller can switch methods with errors.Is.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing artifact: %v", ErrResourceUnavailable, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.BandEdgesHz) < 2 {
		return errors.New("artifact needs at least two band edges")
	}
	if len(m.Weights) != len(m.BandEdgesHz)-1 {
		return fmt.Errorf("artifact has %d weights for %d bands",
			len(m.Weights), len(m.BandEdgesHz)-1)
	}
	for i := 1; i < len(m.BandEdgesHz); i++ {
		if m.BandEdgesHz[i] <= m.BandEdgesHz[i-1] {
			return errors.New("band edges must be strictly increasing")
		}
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		return errors.New("threshold must be inside (0, 1)")
	}
	return nil
}

// ModelSegmenter classifies frames with the loaded model and applies the
// same hysteresis as the energy method.
type ModelSegmenter struct {
	model *Model
	cfg   Config
}

func NewModelSegmenter(model *Model, cfg Config) *ModelSegmenter {
	if cfg.FrameSec <= 0 || cfg.HopSec <= 0 {
		cfg = DefaultConfig()
	}
	return &ModelSegmenter{model: model, cfg: cfg}
}

// Segments returns the ordered voiced regions of the clip.
func (s *ModelSegmenter) Segments(clip *audio.Clip) ([]Segment, error) {
	if s.model == nil {
		return nil, ErrResourceUnavailable
	}
	frameLen := int(s.cfg.FrameSec * float64(clip.SampleRate))
	hop := int(s.cfg.HopSec * float64(clip.SampleRate))
	if frameLen <= 0 || hop <= 0 || len(clip.Samples) < frameLen {
		return nil, nil
	}

	fftSize := nextPow2(frameLen)
	frame := make([]float64, fftSize)
	var active []bool
	for start := 0; start+frameLen <= len(clip.Samples); start += hop {
		copy(frame, clip.Samples[start:start+frameLen])
		for i := frameLen; i < fftSize; i++ {
			frame[i] = 0
		}
		p := s.model.speechProbability(frame, clip.SampleRate)
		active = append(active, p >= s.model.Threshold)
	}

	return mergeFrames(active, s.cfg), nil
}

// speechProbability computes the logistic score of one frame from its log
// band energies.
func (m *Model) speechProbability(frame []float64, sampleRate int) float64 {
	spec := fft.FFTReal(frame)
	half := len(spec) / 2
	binHz := float64(sampleRate) / float64(len(frame))

	const eps = 1e-12
	z := m.Bias
	for b := 0; b < len(m.Weights); b++ {
		lo := int(m.BandEdgesHz[b] / binHz)
		hi := int(m.BandEdgesHz[b+1] / binHz)
		if hi > half {
			hi = half
		}
		var energy float64
		for i := lo; i < hi; i++ {
			re := real(spec[i])
			im := imag(spec[i])
			energy += re*re + im*im
		}
		z += m.Weights[b] * math.Log(energy+eps)
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

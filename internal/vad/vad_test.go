package vad

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/speechcoach/tonegrade/internal/audio"
)

type testLogger struct{}

func (testLogger) Warnf(format string, args ...any)  {}
func (testLogger) Debugf(format string, args ...any) {}

// burstClip builds a clip of silence with sine bursts at the given
// [start, end) second intervals.
func burstClip(duration float64, rate int, bursts []Segment) *audio.Clip {
	samples := make([]float64, int(duration*float64(rate)))
	for _, b := range bursts {
		lo := int(b.Start * float64(rate))
		hi := int(b.End * float64(rate))
		for i := lo; i < hi && i < len(samples); i++ {
			samples[i] = 0.5 * math.Sin(2*math.Pi*200*float64(i)/float64(rate))
		}
	}
	return &audio.Clip{Samples: samples, SampleRate: rate}
}

func TestEnergySegmenterSingleBurst(t *testing.T) {
	seg := NewEnergySegmenter(DefaultConfig())
	clip := burstClip(2.5, 16000, []Segment{{Start: 0.5, End: 1.5}})

	segments, err := seg.Segments(clip)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if math.Abs(segments[0].Start-0.5) > 0.06 || math.Abs(segments[0].End-1.5) > 0.06 {
		t.Errorf("Expected segment near [0.5, 1.5], got [%.3f, %.3f]",
			segments[0].Start, segments[0].End)
	}
}

func TestEnergySegmenterSilence(t *testing.T) {
	seg := NewEnergySegmenter(DefaultConfig())
	clip := &audio.Clip{Samples: make([]float64, 16000), SampleRate: 16000}

	segments, err := seg.Segments(clip)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Expected no segments in silence, got %d", len(segments))
	}
}

func TestEnergySegmenterBridgesShortGap(t *testing.T) {
	seg := NewEnergySegmenter(DefaultConfig())
	// Two bursts 0.3s apart: below the 0.5s gap limit, so merged
	clip := burstClip(3.0, 16000, []Segment{
		{Start: 0.5, End: 1.0},
		{Start: 1.3, End: 2.0},
	})

	segments, err := seg.Segments(clip)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected bridged single segment, got %d", len(segments))
	}
}

func TestEnergySegmenterKeepsLongGap(t *testing.T) {
	seg := NewEnergySegmenter(DefaultConfig())
	clip := burstClip(4.0, 16000, []Segment{
		{Start: 0.5, End: 1.0},
		{Start: 2.5, End: 3.0},
	})

	segments, err := seg.Segments(clip)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments across a 1.5s gap, got %d", len(segments))
	}
}

func TestEnergySegmenterDropsShortBurst(t *testing.T) {
	seg := NewEnergySegmenter(DefaultConfig())
	// 50 ms burst is below the 100 ms minimum
	clip := burstClip(2.0, 16000, []Segment{{Start: 0.5, End: 0.55}})

	segments, err := seg.Segments(clip)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Expected short burst dropped, got %d segments", len(segments))
	}
}

func TestValidate(t *testing.T) {
	good := []Segment{{Start: 0, End: 1}, {Start: 1.5, End: 2}}
	if err := Validate(good); err != nil {
		t.Errorf("Valid segments rejected: %v", err)
	}

	if err := Validate([]Segment{{Start: 1, End: 1}}); err == nil {
		t.Error("Expected error for empty segment")
	}
	if err := Validate([]Segment{{Start: 0, End: 1}, {Start: 0.5, End: 2}}); err == nil {
		t.Error("Expected error for overlapping segments")
	}
}

func TestSpeechRatio(t *testing.T) {
	segments := []Segment{{Start: 0, End: 1}, {Start: 2, End: 3}}
	if r := SpeechRatio(segments, 4.0); math.Abs(r-0.5) > 1e-9 {
		t.Errorf("Expected ratio 0.5, got %f", r)
	}
	if r := SpeechRatio(segments, 0); r != 0 {
		t.Errorf("Expected ratio 0 for zero duration, got %f", r)
	}
}

func writeModelFile(t *testing.T, m Model) string {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "vad.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func validModel() Model {
	return Model{
		BandEdgesHz: []float64{0, 1000, 4000},
		Weights:     []float64{0.5, 0.2},
		Bias:        -1.0,
		Threshold:   0.5,
	}
}

func TestLoadModel(t *testing.T) {
	path := writeModelFile(t, validModel())

	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if len(m.Weights) != 2 {
		t.Errorf("Expected 2 weights, got %d", len(m.Weights))
	}
}

func TestLoadModelMissing(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Expected ErrResourceUnavailable, got %v", err)
	}
}

func TestLoadModelInvalid(t *testing.T) {
	cases := []Model{
		{BandEdgesHz: []float64{0}, Weights: nil, Threshold: 0.5},
		{BandEdgesHz: []float64{0, 1000, 4000}, Weights: []float64{0.5}, Threshold: 0.5},
		{BandEdgesHz: []float64{0, 4000, 1000}, Weights: []float64{0.5, 0.2}, Threshold: 0.5},
		{BandEdgesHz: []float64{0, 1000, 4000}, Weights: []float64{0.5, 0.2}, Threshold: 1.5},
	}
	for i, m := range cases {
		path := writeModelFile(t, m)
		if _, err := LoadModel(path); !errors.Is(err, ErrResourceUnavailable) {
			t.Errorf("Case %d: expected ErrResourceUnavailable, got %v", i, err)
		}
	}
}

func TestDetectorFallsBackWithoutModel(t *testing.T) {
	d := NewDetector(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig(), testLogger{})
	clip := burstClip(2.0, 16000, []Segment{{Start: 0.5, End: 1.5}})

	segments, method := d.Detect(clip)
	if method != MethodEnergy {
		t.Errorf("Expected energy method, got %s", method)
	}
	if len(segments) != 1 {
		t.Errorf("Expected 1 segment, got %d", len(segments))
	}
}

func TestDetectorUsesModel(t *testing.T) {
	// A model with zero weights and positive bias says "speech" for
	// every frame regardless of content
	m := validModel()
	m.Weights = []float64{0, 0}
	m.Bias = 2.0
	path := writeModelFile(t, m)

	d := NewDetector(path, DefaultConfig(), testLogger{})
	clip := burstClip(1.0, 16000, nil)

	segments, method := d.Detect(clip)
	if method != MethodModel {
		t.Fatalf("Expected model method, got %s", method)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 full-clip segment, got %d", len(segments))
	}
	if segments[0].Start != 0 {
		t.Errorf("Expected segment starting at 0, got %f", segments[0].Start)
	}
}

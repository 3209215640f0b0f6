package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/speechcoach/tonegrade/internal/audio"
)

func sineClip(freq float64, duration float64, rate int) *audio.Clip {
	samples := make([]float64, int(duration*float64(rate)))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &audio.Clip{Samples: samples, SampleRate: rate}
}

func TestTrackSine(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	clip := sineClip(200, 0.5, 16000)

	curve, err := ex.Track(clip)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if curve.Len() == 0 {
		t.Fatal("Empty curve")
	}
	if curve.VoicedRatio() < 0.8 {
		t.Errorf("Expected mostly voiced frames for a pure tone, got ratio %f", curve.VoicedRatio())
	}

	for _, s := range curve.Samples {
		if !s.Voiced {
			continue
		}
		if math.Abs(s.Freq-200) > 10 {
			t.Errorf("Frame at %.3fs: expected ~200 Hz, got %f", s.Time, s.Freq)
		}
	}
}

func TestTrackFrequencySweep(t *testing.T) {
	// Frequencies across the search band should all be recovered
	ex := NewExtractor(DefaultConfig())
	for _, freq := range []float64{100, 150, 250, 400} {
		curve, err := ex.Track(sineClip(freq, 0.3, 16000))
		if err != nil {
			t.Fatalf("Track failed at %.0f Hz: %v", freq, err)
		}
		voiced := curve.VoicedFreqs()
		if len(voiced) == 0 {
			t.Fatalf("No voiced frames at %.0f Hz", freq)
		}
		mid := voiced[len(voiced)/2]
		if math.Abs(mid-freq) > freq*0.05 {
			t.Errorf("Expected ~%.0f Hz, got %f", freq, mid)
		}
	}
}

func TestTrackSilence(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	clip := &audio.Clip{Samples: make([]float64, 8000), SampleRate: 16000}

	curve, err := ex.Track(clip)
	if !errors.Is(err, ErrInsufficientSignal) {
		t.Fatalf("Expected ErrInsufficientSignal, got %v", err)
	}
	if curve == nil {
		t.Fatal("Expected a curve even on insufficient signal")
	}
	if curve.VoicedCount() != 0 {
		t.Errorf("Expected zero voiced frames in silence, got %d", curve.VoicedCount())
	}
}

func TestTrackTooShort(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	// Shorter than one 40 ms analysis frame
	clip := sineClip(200, 0.02, 16000)

	curve, err := ex.Track(clip)
	if !errors.Is(err, ErrInsufficientSignal) {
		t.Fatalf("Expected ErrInsufficientSignal, got %v", err)
	}
	if curve.Len() != 0 {
		t.Errorf("Expected empty curve, got %d frames", curve.Len())
	}
}

func TestTrackFrequencyOutsideBand(t *testing.T) {
	// 1 kHz is above the 600 Hz ceiling; the fundamental must not be
	// reported inside the band
	ex := NewExtractor(DefaultConfig())
	curve, _ := ex.Track(sineClip(1000, 0.3, 16000))

	for _, s := range curve.Samples {
		if s.Voiced && math.Abs(s.Freq-1000) < 50 {
			t.Errorf("Reported out-of-band frequency %f", s.Freq)
		}
	}
}

func TestNewCurveValidation(t *testing.T) {
	if _, err := NewCurve(0, nil); err == nil {
		t.Error("Expected error for zero step")
	}

	_, err := NewCurve(0.01, []Sample{
		{Time: 0.00, Freq: 200, Voiced: true},
		{Time: 0.00, Freq: 210, Voiced: true},
	})
	if err == nil {
		t.Error("Expected error for non-increasing times")
	}

	_, err = NewCurve(0.01, []Sample{
		{Time: 0.00, Freq: 0, Voiced: true},
	})
	if err == nil {
		t.Error("Expected error for voiced frame with zero frequency")
	}

	curve, err := NewCurve(0.01, []Sample{
		{Time: 0.00, Freq: 200, Voiced: true},
		{Time: 0.01, Voiced: false},
	})
	if err != nil {
		t.Fatalf("Valid curve rejected: %v", err)
	}
	if curve.VoicedCount() != 1 {
		t.Errorf("Expected 1 voiced frame, got %d", curve.VoicedCount())
	}
}

func TestSemitoneRange(t *testing.T) {
	curve := &Curve{Step: 0.01, Samples: []Sample{
		{Time: 0.00, Freq: 150, Voiced: true},
		{Time: 0.01, Freq: 200, Voiced: true},
		{Time: 0.02, Freq: 300, Voiced: true},
	}}

	// One octave from 150 to 300 Hz
	if r := curve.SemitoneRange(); math.Abs(r-12) > 1e-9 {
		t.Errorf("Expected 12 semitones, got %f", r)
	}

	single := &Curve{Step: 0.01, Samples: []Sample{{Time: 0, Freq: 200, Voiced: true}}}
	if r := single.SemitoneRange(); r != 0 {
		t.Errorf("Expected 0 range for a single voiced frame, got %f", r)
	}
}

func TestStats(t *testing.T) {
	curve := &Curve{Step: 0.01, Samples: []Sample{
		{Time: 0.00, Freq: 100, Voiced: true},
		{Time: 0.01, Voiced: false},
		{Time: 0.02, Freq: 300, Voiced: true},
	}}

	mean, std := curve.Stats()
	if math.Abs(mean-200) > 1e-9 {
		t.Errorf("Expected mean 200, got %f", mean)
	}
	if math.Abs(std-100) > 1e-9 {
		t.Errorf("Expected std 100, got %f", std)
	}
}

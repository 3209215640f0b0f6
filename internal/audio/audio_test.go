package audio

import (
	"math"
	"path/filepath"
	"testing"
)

func sineClip(freq float64, amplitude float64, duration float64, rate int) *Clip {
	samples := make([]float64, int(duration*float64(rate)))
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &Clip{Samples: samples, SampleRate: rate}
}

func TestRMS(t *testing.T) {
	if rms := RMS(nil); rms != 0 {
		t.Errorf("Expected RMS 0 for empty input, got %f", rms)
	}

	// DC signal
	dc := make([]float64, 100)
	for i := range dc {
		dc[i] = 0.5
	}
	if rms := RMS(dc); math.Abs(rms-0.5) > 1e-9 {
		t.Errorf("Expected RMS 0.5 for DC signal, got %f", rms)
	}

	// A sine of amplitude a has RMS a/sqrt(2)
	clip := sineClip(100, 0.8, 1.0, 8000)
	expected := 0.8 / math.Sqrt2
	if rms := RMS(clip.Samples); math.Abs(rms-expected) > 0.01 {
		t.Errorf("Expected RMS %f for sine, got %f", expected, rms)
	}
}

func TestNormalize(t *testing.T) {
	clip := sineClip(100, 0.8, 0.5, 8000)
	out := Normalize(clip)

	if rms := RMS(out.Samples); math.Abs(rms-0.1) > 0.01 {
		t.Errorf("Expected RMS near 0.1 after normalization, got %f", rms)
	}

	// Input must not be modified
	if math.Abs(RMS(clip.Samples)-0.8/math.Sqrt2) > 0.01 {
		t.Error("Normalize modified its input")
	}
}

func TestNormalizeGainCap(t *testing.T) {
	// A very quiet signal must not be amplified beyond 5x
	clip := sineClip(100, 0.001, 0.5, 8000)
	out := Normalize(clip)

	inRMS := RMS(clip.Samples)
	outRMS := RMS(out.Samples)
	gain := outRMS / inRMS
	if gain > 5.0+1e-6 {
		t.Errorf("Expected gain capped at 5.0, got %f", gain)
	}
}

func TestNormalizeSilence(t *testing.T) {
	clip := &Clip{Samples: make([]float64, 1000), SampleRate: 8000}
	out := Normalize(clip)

	for i, s := range out.Samples {
		if s != 0 {
			t.Fatalf("Expected silence to stay silent, sample %d is %f", i, s)
		}
	}
}

func TestPreEmphasis(t *testing.T) {
	clip := &Clip{Samples: []float64{1.0, 1.0, 1.0, 1.0}, SampleRate: 8000}
	out := PreEmphasis(clip)

	if out.Samples[0] != 1.0 {
		t.Errorf("Expected first sample unchanged, got %f", out.Samples[0])
	}
	// y[n] = x[n] - 0.97*x[n-1] = 0.03 for a DC run
	for i := 1; i < len(out.Samples); i++ {
		if math.Abs(out.Samples[i]-0.03) > 1e-9 {
			t.Errorf("Sample %d: expected 0.03, got %f", i, out.Samples[i])
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.wav")
	clip := sineClip(220, 0.5, 0.25, 16000)

	if err := WriteWAV(path, clip); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	decoded, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}

	if decoded.SampleRate != clip.SampleRate {
		t.Errorf("Expected sample rate %d, got %d", clip.SampleRate, decoded.SampleRate)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("Expected %d samples, got %d", len(clip.Samples), len(decoded.Samples))
	}

	// 16-bit quantization tolerance
	for i := range clip.Samples {
		if math.Abs(decoded.Samples[i]-clip.Samples[i]) > 1.0/16384 {
			t.Fatalf("Sample %d: expected %f, got %f", i, clip.Samples[i], decoded.Samples[i])
		}
	}
}

func TestReadWAVMissingFile(t *testing.T) {
	if _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{Samples: make([]float64, 8000), SampleRate: 16000}
	if d := clip.Duration(); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("Expected duration 0.5, got %f", d)
	}

	empty := &Clip{}
	if d := empty.Duration(); d != 0 {
		t.Errorf("Expected duration 0 for empty clip, got %f", d)
	}
}

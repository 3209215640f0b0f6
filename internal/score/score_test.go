package score

import (
	"math"
	"testing"

	"github.com/speechcoach/tonegrade/internal/align"
	"github.com/speechcoach/tonegrade/internal/pitch"
)

// sweepCurve builds a voiced curve sweeping lo to hi Hz over n frames.
func sweepCurve(lo, hi float64, n int) *pitch.Curve {
	samples := make([]pitch.Sample, n)
	for i := range samples {
		f := lo + (hi-lo)*float64(i)/float64(n-1)
		samples[i] = pitch.Sample{Time: float64(i) * 0.01, Freq: f, Voiced: true}
	}
	return &pitch.Curve{Step: 0.01, Samples: samples}
}

// diagonalResult pairs frame i with frame i for two equal-length curves.
func diagonalResult(n int) *align.Result {
	path := make([]align.PathPoint, n)
	for i := range path {
		path[i] = align.PathPoint{Ref: i, Cand: i}
	}
	return &align.Result{Path: path}
}

func TestScoreIdentity(t *testing.T) {
	s := NewScorer(DefaultConfig())
	curve := sweepCurve(150, 250, 50)

	b := s.Score(curve, curve, diagonalResult(50))

	if b.Accuracy != 100 {
		t.Errorf("Expected accuracy 100, got %f", b.Accuracy)
	}
	if b.Trend != 100 {
		t.Errorf("Expected trend 100, got %f", b.Trend)
	}
	if b.Stability != 100 {
		t.Errorf("Expected stability 100, got %f", b.Stability)
	}
	if b.Range != 100 {
		t.Errorf("Expected range 100, got %f", b.Range)
	}
	if b.Total != 100 {
		t.Errorf("Expected total 100, got %f", b.Total)
	}
	if b.Grade != GradeExcellent {
		t.Errorf("Expected excellent grade, got %s", b.Grade)
	}
}

func TestScoreReversedContour(t *testing.T) {
	s := NewScorer(DefaultConfig())
	ref := sweepCurve(150, 250, 50)
	cand := sweepCurve(250, 150, 50)

	b := s.Score(ref, cand, diagonalResult(50))

	// Perfectly anti-correlated: accuracy bottoms out, no trend match
	if b.Accuracy > 1 {
		t.Errorf("Expected accuracy near 0 for a reversed contour, got %f", b.Accuracy)
	}
	if b.Trend != 0 {
		t.Errorf("Expected trend 0, got %f", b.Trend)
	}
	// Same span, so range is untouched
	if b.Range != 100 {
		t.Errorf("Expected range 100, got %f", b.Range)
	}
	if b.Total >= 60 {
		t.Errorf("Expected failing total for a reversed contour, got %f", b.Total)
	}
	if b.Grade != GradeNeedsImprovement {
		t.Errorf("Expected needs-improvement, got %s", b.Grade)
	}
}

func TestScoreRegisterShiftInvariance(t *testing.T) {
	// The same contour an octave higher is a different voice, not a
	// different pronunciation
	s := NewScorer(DefaultConfig())
	ref := sweepCurve(150, 250, 50)
	cand := sweepCurve(300, 500, 50)

	b := s.Score(ref, cand, diagonalResult(50))

	if b.Accuracy < 99 {
		t.Errorf("Expected accuracy near 100 under register shift, got %f", b.Accuracy)
	}
	if b.Trend != 100 {
		t.Errorf("Expected trend 100, got %f", b.Trend)
	}
	if b.Range != 100 {
		t.Errorf("Expected range 100 for equal semitone span, got %f", b.Range)
	}
}

func TestRangeScoreSymmetry(t *testing.T) {
	s := NewScorer(DefaultConfig())
	ref := sweepCurve(150, 300, 50) // 12 semitones

	narrow := sweepCurve(150, 150*math.Pow(2, 0.5), 50) // 6 semitones
	wide := sweepCurve(150, 600, 50)                    // 24 semitones

	bn := s.Score(ref, narrow, diagonalResult(50))
	bw := s.Score(ref, wide, diagonalResult(50))

	if math.Abs(bn.Range-50) > 0.5 {
		t.Errorf("Expected range 50 for half the span, got %f", bn.Range)
	}
	if math.Abs(bw.Range-50) > 0.5 {
		t.Errorf("Expected range 50 for double the span, got %f", bw.Range)
	}
	if math.Abs(bn.Range-bw.Range) > 1e-9 {
		t.Errorf("Expected symmetric range penalty, got %f vs %f", bn.Range, bw.Range)
	}
}

func TestScoreNoiseDegradesMonotonically(t *testing.T) {
	s := NewScorer(DefaultConfig())
	ref := sweepCurve(150, 250, 60)

	// Deterministic pseudo-noise of growing magnitude
	noisy := func(mag float64) *pitch.Curve {
		samples := make([]pitch.Sample, 60)
		for i := range samples {
			f := 150 + 100*float64(i)/59
			f += mag * math.Sin(float64(i)*1.7)
			samples[i] = pitch.Sample{Time: float64(i) * 0.01, Freq: f, Voiced: true}
		}
		return &pitch.Curve{Step: 0.01, Samples: samples}
	}

	prev := 101.0
	for _, mag := range []float64{0, 5, 15, 40} {
		b := s.Score(ref, noisy(mag), diagonalResult(60))
		if b.Total >= prev {
			t.Errorf("Expected total to drop with noise %f: %f >= %f", mag, b.Total, prev)
		}
		prev = b.Total
	}
}

func TestScoreFlatCurves(t *testing.T) {
	s := NewScorer(DefaultConfig())
	flat := func(freq float64) *pitch.Curve {
		samples := make([]pitch.Sample, 30)
		for i := range samples {
			samples[i] = pitch.Sample{Time: float64(i) * 0.01, Freq: freq, Voiced: true}
		}
		return &pitch.Curve{Step: 0.01, Samples: samples}
	}

	// Two flat contours are each other's perfect rendition
	b := s.Score(flat(200), flat(220), diagonalResult(30))
	if b.Accuracy != 100 {
		t.Errorf("Expected accuracy 100 for two flat contours, got %f", b.Accuracy)
	}
	if b.Range != 100 {
		t.Errorf("Expected range 100 for two zero-span contours, got %f", b.Range)
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("Default weights rejected: %v", err)
	}

	bad := Weights{Accuracy: 0.5, Trend: 0.5, Stability: 0.5, Range: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for weights summing to 2")
	}

	negative := Weights{Accuracy: 1.2, Trend: -0.2, Stability: 0, Range: 0}
	if err := negative.Validate(); err == nil {
		t.Error("Expected error for negative weight")
	}
}

func TestWeightOverrideChangesTotal(t *testing.T) {
	ref := sweepCurve(150, 250, 50)
	cand := sweepCurve(250, 150, 50)

	balanced := NewScorer(DefaultConfig())
	trendHeavy := NewScorer(Config{
		Weights:        Weights{Accuracy: 0.1, Trend: 0.7, Stability: 0.1, Range: 0.1},
		StabilityScale: 0.08,
	})

	b1 := balanced.Score(ref, cand, diagonalResult(50))
	b2 := trendHeavy.Score(ref, cand, diagonalResult(50))

	// Trend is 0 for a reversed contour, so weighting it up lowers the
	// total
	if b2.Total >= b1.Total {
		t.Errorf("Expected trend-heavy total below default, got %f >= %f", b2.Total, b1.Total)
	}
}

func TestGradeFor(t *testing.T) {
	cases := []struct {
		total float64
		want  Grade
	}{
		{95, GradeExcellent},
		{90, GradeExcellent},
		{85, GradeGood},
		{75, GradeFair},
		{65, GradePass},
		{59.9, GradeNeedsImprovement},
		{0, GradeNeedsImprovement},
	}
	for _, c := range cases {
		if got := GradeFor(c.total); got != c.want {
			t.Errorf("GradeFor(%f): expected %s, got %s", c.total, c.want, got)
		}
	}
}

func TestAnalyze(t *testing.T) {
	ref := sweepCurve(150, 250, 100)
	cand := sweepCurve(150, 250, 50)

	d := Analyze(ref, cand)

	if math.Abs(d.DurationRatio-0.4949) > 0.01 {
		t.Errorf("Expected duration ratio near 0.49, got %f", d.DurationRatio)
	}
	if d.Quality != "good" {
		t.Errorf("Expected good quality for fully voiced curve, got %s", d.Quality)
	}
	if d.Reference.MeanHz <= 0 {
		t.Errorf("Expected positive mean frequency, got %f", d.Reference.MeanHz)
	}
}

package tonegrade

import (
	"github.com/speechcoach/tonegrade/internal/align"
	"github.com/speechcoach/tonegrade/internal/compare"
	"github.com/speechcoach/tonegrade/internal/pitch"
	"github.com/speechcoach/tonegrade/internal/score"
	"github.com/speechcoach/tonegrade/internal/vad"
	"github.com/speechcoach/tonegrade/pkg/models"
)

func curveToModel(c *pitch.Curve) *models.PitchCurve {
	out := &models.PitchCurve{
		Step:    c.Step,
		Samples: make([]models.PitchSample, len(c.Samples)),
	}
	for i, s := range c.Samples {
		out.Samples[i] = models.PitchSample{Time: s.Time, Freq: s.Freq, Voiced: s.Voiced}
	}
	return out
}

func curveFromModel(m *models.PitchCurve) (*pitch.Curve, error) {
	samples := make([]pitch.Sample, len(m.Samples))
	for i, s := range m.Samples {
		samples[i] = pitch.Sample{Time: s.Time, Freq: s.Freq, Voiced: s.Voiced}
	}
	return pitch.NewCurve(m.Step, samples)
}

func segmentsToModel(segments []vad.Segment) []models.SpeechSegment {
	out := make([]models.SpeechSegment, len(segments))
	for i, s := range segments {
		out[i] = models.SpeechSegment{Start: s.Start, End: s.End}
	}
	return out
}

func hintsFromModel(hints []models.Hint) []align.Hint {
	if len(hints) == 0 {
		return nil
	}
	out := make([]align.Hint, len(hints))
	for i, h := range hints {
		out[i] = align.Hint{Unit: h.Unit, Start: h.Start, End: h.End}
	}
	return out
}

func weightsFromModel(w models.Weights) score.Weights {
	return score.Weights{
		Accuracy:  w.Accuracy,
		Trend:     w.Trend,
		Stability: w.Stability,
		Range:     w.Range,
	}
}

func detailsToModel(d score.Details) models.Details {
	stats := func(s score.CurveStats) models.CurveStats {
		return models.CurveStats{
			Duration:    s.Duration,
			MeanHz:      s.MeanHz,
			StdHz:       s.StdHz,
			VoicedRatio: s.VoicedRatio,
		}
	}
	return models.Details{
		Reference:      stats(d.Reference),
		Candidate:      stats(d.Candidate),
		DurationRatio:  d.DurationRatio,
		Quality:        d.Quality,
		Recommendation: d.Recommendation,
	}
}

func outcomeToModel(o *compare.Outcome) *models.ComparisonResult {
	return &models.ComparisonResult{
		ScoreBreakdown: models.ScoreBreakdown{
			Accuracy:   o.Accuracy,
			Trend:      o.Trend,
			Stability:  o.Stability,
			Range:      o.Range,
			TotalScore: o.Total,
			Grade:      string(o.Grade),
			MethodUsed: string(o.Method),
			Reason:     o.Reason,
		},
		VADMethod: string(o.VADMethod),
		AlignCost: o.AlignCost,
		Details:   detailsToModel(o.Details),
	}
}

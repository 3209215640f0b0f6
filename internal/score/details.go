package score

import "github.com/speechcoach/tonegrade/internal/pitch"

// CurveStats summarizes one curve for the detailed report.
type CurveStats struct {
	Duration    float64 `json:"duration"`
	MeanHz      float64 `json:"mean_hz"`
	StdHz       float64 `json:"std_hz"`
	VoicedRatio float64 `json:"voiced_ratio"`
}

// Details is the optional per-comparison analysis: duration mismatch,
// per-curve statistics and a recording quality assessment.
type Details struct {
	Reference      CurveStats `json:"reference"`
	Candidate      CurveStats `json:"candidate"`
	DurationRatio  float64    `json:"duration_ratio"`
	Quality        string     `json:"quality"`
	Recommendation string     `json:"recommendation"`
}

func curveStats(c *pitch.Curve) CurveStats {
	mean, std := c.Stats()
	return CurveStats{
		Duration:    c.Duration(),
		MeanHz:      mean,
		StdHz:       std,
		VoicedRatio: c.VoicedRatio(),
	}
}

// Analyze builds the detailed report for a pair of curves.
func Analyze(ref, cand *pitch.Curve) Details {
	d := Details{
		Reference: curveStats(ref),
		Candidate: curveStats(cand),
	}
	if d.Reference.Duration > 0 {
		d.DurationRatio = d.Candidate.Duration / d.Reference.Duration
	}
	d.Quality, d.Recommendation = assessQuality(d.Candidate.VoicedRatio)
	return d
}

// assessQuality labels the candidate recording from its voiced-frame
// ratio: above 0.7 is good, above 0.4 fair, below that poor.
func assessQuality(voicedRatio float64) (string, string) {
	switch {
	case voicedRatio > 0.7:
		return "good", "recording quality is good"
	case voicedRatio > 0.4:
		return "fair", "recording quality is fair; move closer to the microphone or speak louder"
	default:
		return "poor", "re-record in a quiet environment and make sure the voice is clear"
	}
}

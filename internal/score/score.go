package score

import (
	"math"

	"github.com/speechcoach/tonegrade/internal/align"
	"github.com/speechcoach/tonegrade/internal/pitch"
)

// Breakdown holds the four sub-scores, each in [0, 100], their weighted
// total and the resulting grade. It is created once per comparison and
// never mutated.
type Breakdown struct {
	Accuracy  float64 `json:"accuracy"`
	Trend     float64 `json:"trend"`
	Stability float64 `json:"stability"`
	Range     float64 `json:"range"`
	Total     float64 `json:"total_score"`
	Grade     Grade   `json:"grade"`
}

// Config tunes the scorer.
type Config struct {
	Weights Weights
	// StabilityScale is the detrended log-frequency RMSE, in log-Hz,
	// at which the stability sub-score drops to 50.
	StabilityScale float64
}

func DefaultConfig() Config {
	return Config{Weights: DefaultWeights(), StabilityScale: 0.08}
}

// Scorer computes sub-scores over an alignment of two pitch curves.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	if cfg.StabilityScale <= 0 {
		cfg.StabilityScale = DefaultConfig().StabilityScale
	}
	if cfg.Weights.Validate() != nil {
		cfg.Weights = DefaultWeights()
	}
	return &Scorer{cfg: cfg}
}

// Score evaluates the aligned curves. Only path points where both frames
// are voiced contribute: unvoiced frames never enter the statistics.
func (s *Scorer) Score(ref, cand *pitch.Curve, result *align.Result) Breakdown {
	refLog, candLog := alignedLogPairs(ref, cand, result.Path)

	b := Breakdown{
		Accuracy:  accuracyScore(refLog, candLog),
		Trend:     trendScore(refLog, candLog),
		Stability: s.stabilityScore(refLog, candLog),
		Range:     rangeScore(ref, cand),
	}
	w := s.cfg.Weights
	b.Total = clamp(
		b.Accuracy*w.Accuracy+b.Trend*w.Trend+b.Stability*w.Stability+b.Range*w.Range,
		0, 100)
	b.Grade = GradeFor(b.Total)
	return b
}

// alignedLogPairs walks the warping path and keeps the log-frequency of
// every point where both sides are voiced.
func alignedLogPairs(ref, cand *pitch.Curve, path []align.PathPoint) (refLog, candLog []float64) {
	refLog = make([]float64, 0, len(path))
	candLog = make([]float64, 0, len(path))
	for _, p := range path {
		r := ref.Samples[p.Ref]
		c := cand.Samples[p.Cand]
		if r.Voiced && c.Voiced {
			refLog = append(refLog, math.Log(r.Freq))
			candLog = append(candLog, math.Log(c.Freq))
		}
	}
	return refLog, candLog
}

// accuracyScore is the Pearson correlation of the aligned log sequences,
// rescaled from [-1, 1] to [0, 100]. Correlation is invariant to each
// curve's mean, so register differences between voices do not penalize.
func accuracyScore(refLog, candLog []float64) float64 {
	r := pearson(refLog, candLog)
	return clamp((r+1)*50, 0, 100)
}

func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 3 {
		return 0
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 && syy == 0 {
		// Two flat contours have identical shape.
		return 1
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// trendScore is the fraction of consecutive aligned pairs whose deltas
// agree in sign, scaled to [0, 100]. It captures whether rising and
// falling contour direction is reproduced.
func trendScore(refLog, candLog []float64) float64 {
	if len(refLog) < 2 {
		return 0
	}
	matches := 0
	total := 0
	for i := 1; i < len(refLog); i++ {
		rd := sign(refLog[i] - refLog[i-1])
		cd := sign(candLog[i] - candLog[i-1])
		total++
		if rd == cd {
			matches++
		}
	}
	return 100 * float64(matches) / float64(total)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// stabilityScore is an inverse function of the RMSE between the aligned
// log sequences after removing the best-fit linear trend from their
// difference. Low jitter scores high regardless of contour shape.
func (s *Scorer) stabilityScore(refLog, candLog []float64) float64 {
	n := len(refLog)
	if n < 3 {
		return 0
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = candLog[i] - refLog[i]
	}
	rmse := detrendedRMSE(diff)
	ratio := rmse / s.cfg.StabilityScale
	return clamp(100/(1+ratio*ratio), 0, 100)
}

// detrendedRMSE fits a least-squares line to the series and returns the
// RMS of the residuals.
func detrendedRMSE(series []float64) float64 {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	var slope, intercept float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
		intercept = (sumY - slope*sumX) / n
	} else {
		intercept = sumY / n
	}

	var sq float64
	for i, y := range series {
		r := y - (slope*float64(i) + intercept)
		sq += r * r
	}
	return math.Sqrt(sq / n)
}

// rangeScore compares the voiced pitch ranges in semitones. The penalty
// is symmetric: a candidate spanning half the reference range scores the
// same as one spanning double.
func rangeScore(ref, cand *pitch.Curve) float64 {
	refRange := ref.SemitoneRange()
	candRange := cand.SemitoneRange()
	if refRange == 0 {
		if candRange == 0 {
			return 100
		}
		return 0
	}
	if candRange == 0 {
		return 0
	}
	ratio := math.Min(candRange/refRange, refRange/candRange)
	return clamp(ratio*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

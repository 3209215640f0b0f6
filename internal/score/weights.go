package score

import (
	"fmt"
	"math"
)

// Weights combine the four sub-scores into the total. The default split
// is 40/30/20/10; a deployment tuned for tonal-language drills may raise
// the trend weight instead, so the weights are configuration, not a
// constant.
type Weights struct {
	Accuracy  float64 `json:"accuracy" toml:"accuracy"`
	Trend     float64 `json:"trend" toml:"trend"`
	Stability float64 `json:"stability" toml:"stability"`
	Range     float64 `json:"range" toml:"range"`
}

func DefaultWeights() Weights {
	return Weights{Accuracy: 0.4, Trend: 0.3, Stability: 0.2, Range: 0.1}
}

// Validate checks that all weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Accuracy < 0 || w.Trend < 0 || w.Stability < 0 || w.Range < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Accuracy + w.Trend + w.Stability + w.Range
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}

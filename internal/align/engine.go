package align

import (
	"math"

	"github.com/speechcoach/tonegrade/internal/pitch"
)

// Config tunes the alignment engine.
type Config struct {
	// UnvoicedPenalty is the cost of warping a voiced frame against an
	// unvoiced one; it discourages but does not forbid paths through
	// gaps. Measured in squared log-Hz, like the voiced frame cost.
	UnvoicedPenalty float64
}

func DefaultConfig() Config {
	return Config{UnvoicedPenalty: 0.5}
}

// Engine warps a candidate pitch curve onto a reference curve.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.UnvoicedPenalty <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Align runs whole-curve DTW with no anchors. It fails with
// ErrAlignmentFailure when either curve has no voiced frames.
func (e *Engine) Align(ref, cand *pitch.Curve) (*Result, error) {
	if ref.VoicedCount() == 0 || cand.VoicedCount() == 0 {
		return nil, ErrAlignmentFailure
	}
	path, cost := dtw(ref.Samples, cand.Samples, e.cfg.UnvoicedPenalty)
	return &Result{Path: path, Cost: cost / float64(len(path))}, nil
}

// AlignWithHints runs coarse-to-fine DTW: the curves are split at the
// matched hint boundaries and each unit is warped independently, then the
// per-unit paths are concatenated. This bounds a spurious warp to a
// single word instead of letting it drag the whole sentence out of sync.
// Invalid hints return ErrInvalidHint and the caller chooses the next
// strategy; degenerate curves return ErrAlignmentFailure.
func (e *Engine) AlignWithHints(ref, cand *pitch.Curve, refHints, candHints []Hint) (*Result, error) {
	if ref.VoicedCount() == 0 || cand.VoicedCount() == 0 {
		return nil, ErrAlignmentFailure
	}
	if err := ValidateHints(refHints); err != nil {
		return nil, err
	}
	if err := ValidateHints(candHints); err != nil {
		return nil, err
	}
	if err := MatchUnits(refHints, candHints); err != nil {
		return nil, err
	}

	refCuts := cutIndices(ref, refHints)
	candCuts := cutIndices(cand, candHints)

	path := make([]PathPoint, 0, ref.Len()+cand.Len())
	var totalCost float64
	for k := 0; k+1 < len(refCuts); k++ {
		r0, r1 := refCuts[k], refCuts[k+1]
		c0, c1 := candCuts[k], candCuts[k+1]
		if r1 <= r0 || c1 <= c0 {
			// An empty piece on either side means the hint boundaries
			// collapsed at this curve's resolution; anchoring is
			// meaningless here.
			return nil, ErrInvalidHint
		}
		piece, cost := dtw(ref.Samples[r0:r1], cand.Samples[c0:c1], e.cfg.UnvoicedPenalty)
		for _, p := range piece {
			path = append(path, PathPoint{Ref: p.Ref + r0, Cand: p.Cand + c0})
		}
		totalCost += cost
	}

	return &Result{Path: path, Cost: totalCost / float64(len(path))}, nil
}

// cutIndices converts matched hint boundaries into frame index cuts that
// partition the whole curve: the first piece starts at frame 0 and the
// last ends at the final frame, so the concatenated path keeps the
// corner-to-corner invariant. Hint times are absolute; the curve may
// start later than zero after silence trimming.
func cutIndices(curve *pitch.Curve, hints []Hint) []int {
	n := curve.Len()
	first := 0.0
	if n > 0 {
		first = curve.Samples[0].Time
	}
	cuts := make([]int, 0, len(hints)+1)
	cuts = append(cuts, 0)
	for i := 1; i < len(hints); i++ {
		idx := int(math.Round((hints[i].Start - first) / curve.Step))
		if idx < cuts[len(cuts)-1] {
			idx = cuts[len(cuts)-1]
		}
		if idx > n {
			idx = n
		}
		cuts = append(cuts, idx)
	}
	cuts = append(cuts, n)
	return cuts
}

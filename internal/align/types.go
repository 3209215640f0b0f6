package align

import "errors"

// ErrAlignmentFailure reports degenerate input: a curve with zero voiced
// frames cannot be warped.
var ErrAlignmentFailure = errors.New("cannot align curve without voiced frames")

// ErrInvalidHint reports timestamp hints that failed monotonicity or
// unit-matching validation. Hint-guided alignment is skipped; the
// comparison itself continues.
var ErrInvalidHint = errors.New("invalid timestamp hints")

// PathPoint pairs a reference frame index with a candidate frame index.
type PathPoint struct {
	Ref  int
	Cand int
}

// Result is a monotonic warping path plus its length-normalized cost.
// The path starts at (0,0) and ends at (len(ref)-1, len(cand)-1).
type Result struct {
	Path []PathPoint
	Cost float64
}

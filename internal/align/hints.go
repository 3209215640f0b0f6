package align

import (
	"fmt"
	"strings"
)

// Hint is an externally supplied word or character boundary. Hints come
// from a recognizer the caller ran; they are anchors only and are always
// validated before use.
type Hint struct {
	Unit  string  `json:"unit"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ValidateHints checks that a hint list is monotonic: every unit spans a
// positive interval and units do not overlap or run backwards.
func ValidateHints(hints []Hint) error {
	for i, h := range hints {
		if h.Start >= h.End {
			return fmt.Errorf("%w: unit %d %q spans %.3f-%.3f", ErrInvalidHint, i, h.Unit, h.Start, h.End)
		}
		if i > 0 && h.Start < hints[i-1].End {
			return fmt.Errorf("%w: unit %d %q overlaps previous unit", ErrInvalidHint, i, h.Unit)
		}
	}
	return nil
}

// MatchUnits pairs reference hints with candidate hints one-to-one by unit
// text. A pair matches when the texts are equal or one contains the other
// (recognizers sometimes merge or split adjacent characters). Count
// mismatch or any unmatched pair invalidates the whole hint set.
func MatchUnits(refHints, candHints []Hint) error {
	if len(refHints) == 0 || len(refHints) != len(candHints) {
		return fmt.Errorf("%w: %d reference units vs %d candidate units",
			ErrInvalidHint, len(refHints), len(candHints))
	}
	for i := range refHints {
		r := strings.TrimSpace(refHints[i].Unit)
		c := strings.TrimSpace(candHints[i].Unit)
		if r == "" || c == "" {
			return fmt.Errorf("%w: empty unit text at index %d", ErrInvalidHint, i)
		}
		if r == c || strings.Contains(r, c) || strings.Contains(c, r) {
			continue
		}
		return fmt.Errorf("%w: unit %d %q does not match %q", ErrInvalidHint, i, r, c)
	}
	return nil
}

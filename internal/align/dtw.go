package align

import (
	"math"

	"github.com/speechcoach/tonegrade/internal/pitch"
)

// frameCost is the local distance between two pitch frames. Voiced pairs
// compare squared log-frequency difference, which removes absolute
// register and octave bias. A frame warped against an unvoiced gap pays
// the configured penalty; two unvoiced frames match for free.
func frameCost(a, b pitch.Sample, unvoicedPenalty float64) float64 {
	switch {
	case a.Voiced && b.Voiced:
		d := math.Log(a.Freq) - math.Log(b.Freq)
		return d * d
	case a.Voiced != b.Voiced:
		return unvoicedPenalty
	default:
		return 0
	}
}

// dtw computes the standard three-neighbor dynamic time warping between
// two frame slices and backtracks the optimal path. Cost is the raw path
// cost; the caller normalizes. Both slices must be non-empty.
func dtw(ref, cand []pitch.Sample, unvoicedPenalty float64) ([]PathPoint, float64) {
	n, m := len(ref), len(cand)

	d := make([][]float64, n+1)
	for i := range d {
		d[i] = make([]float64, m+1)
		for j := range d[i] {
			d[i][j] = math.Inf(1)
		}
	}
	d[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := frameCost(ref[i-1], cand[j-1], unvoicedPenalty)
			best := d[i-1][j-1]
			if d[i-1][j] < best {
				best = d[i-1][j]
			}
			if d[i][j-1] < best {
				best = d[i][j-1]
			}
			d[i][j] = cost + best
		}
	}

	// Backtrack from the bottom-right corner. Ties prefer the diagonal,
	// then the reference axis, so identical inputs always produce the
	// same path.
	path := make([]PathPoint, 0, n+m)
	i, j := n, m
	for i > 1 || j > 1 {
		path = append(path, PathPoint{Ref: i - 1, Cand: j - 1})
		switch {
		case i == 1:
			j--
		case j == 1:
			i--
		default:
			diag, up, left := d[i-1][j-1], d[i-1][j], d[i][j-1]
			if diag <= up && diag <= left {
				i--
				j--
			} else if up <= left {
				i--
			} else {
				j--
			}
		}
	}
	path = append(path, PathPoint{Ref: 0, Cand: 0})

	// Reverse into forward order.
	for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
		path[a], path[b] = path[b], path[a]
	}
	return path, d[n][m]
}

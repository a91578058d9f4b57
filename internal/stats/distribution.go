package stats

import "fmt"

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram buckets values into bins equal-width bins over [lo, hi].
// The last bin is closed on the right. Values outside the range are ignored.
func Histogram(values []float64, lo, hi float64, bins int) ([]Bin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("stats: bins must be positive, got %d", bins)
	}
	if hi <= lo {
		return nil, fmt.Errorf("stats: empty range [%g, %g]", lo, hi)
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi

	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}

// Point is one step of an empirical CDF.
type Point struct {
	X float64 `json:"x"`
	P float64 `json:"p"`
}

// ECDF returns the empirical cumulative distribution of values: the i-th
// smallest value maps to (i+1)/n.
func ECDF(values []float64) []Point {
	s := Sorted(values)
	n := float64(len(s))
	out := make([]Point, len(s))
	for i, v := range s {
		out[i] = Point{X: v, P: float64(i+1) / n}
	}
	return out
}

// Quantile returns the smallest value whose ECDF reaches p.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("stats: quantile %g outside [0, 1]", p)
	}
	s := Sorted(values)
	for i, v := range s {
		if float64(i+1)/float64(len(s)) >= p {
			return v, nil
		}
	}
	return s[len(s)-1], nil
}

// Package stats provides the descriptive statistics the experiments report.
package stats

import (
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// ErrEmpty is returned when a statistic is requested for no values.
var ErrEmpty = errors.New("stats: no values")

// Mean returns the arithmetic mean of values.
func Mean[T Number](values []T) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)), nil
}

// PopStd returns the population standard deviation (divisor n).
func PopStd[T Number](values []T) (float64, error) {
	return std(values, 0)
}

// SampleStd returns the sample standard deviation (divisor n-1).
// A single value has zero spread.
func SampleStd[T Number](values []T) (float64, error) {
	if len(values) == 1 {
		return 0, nil
	}
	return std(values, 1)
}

func std[T Number](values []T, ddof int) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-ddof)), nil
}

// Min returns the smallest value.
func Min[T Number](values []T) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, ErrEmpty
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

// Max returns the largest value.
func Max[T Number](values []T) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, ErrEmpty
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Sorted returns a sorted copy of values.
func Sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// IndexIQR returns sorted[3n/4] - sorted[n/4] using integer index
// quartiles, without interpolation.
func IndexIQR(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}
	s := Sorted(values)
	n := len(s)
	return s[3*n/4] - s[n/4], nil
}

// CountBelow counts values strictly below threshold.
func CountBelow(values []float64, threshold float64) int {
	n := 0
	for _, v := range values {
		if v < threshold {
			n++
		}
	}
	return n
}

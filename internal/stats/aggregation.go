package stats

import (
	"gonum.org/v1/gonum/floats"
)

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}

// Median calculates the median, averaging the two middle values for even lengths
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Max returns the largest value, or 0 for an empty slice
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Diffs returns the differences between consecutive values
func Diffs(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	floats.SubTo(out, values[1:], values[:len(values)-1])
	return out
}

// MaxGap returns the largest difference between consecutive sorted values
func MaxGap(sorted []float64) float64 {
	return Max(Diffs(sorted))
}

// MaxDeviation returns the largest absolute distance of any value from center
func MaxDeviation(values []float64, center float64) float64 {
	var worst float64
	for _, v := range values {
		d := v - center
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

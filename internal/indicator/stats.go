package indicator

import "math"

// Mean returns the arithmetic mean of the finite entries of values, or NaN when there are none.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		sum += v
		n++
	}

	if n == 0 {
		return math.NaN()
	}

	return sum / float64(n)
}

// Std returns the sample standard deviation (n-1 denominator) of the finite
// entries of values. Fewer than two entries give NaN.
func Std(values []float64) float64 {
	mean := Mean(values)
	sum, n := 0.0, 0

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		sum += (v - mean) * (v - mean)
		n++
	}

	if n < 2 {
		return math.NaN()
	}

	return math.Sqrt(sum / float64(n-1))
}

// ZScores standardises values against their own mean and sample standard
// deviation. Non-finite entries stay NaN. When the deviation is zero or
// undefined every finite entry scores 0.
func ZScores(values []float64) []float64 {
	mean := Mean(values)
	std := Std(values)
	scores := make([]float64, len(values))

	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			scores[i] = math.NaN()
		case math.IsNaN(std) || std == 0:
			scores[i] = 0
		default:
			scores[i] = (v - mean) / std
		}
	}

	return scores
}

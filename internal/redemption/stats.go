package redemption

import "math"

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// PopulationStd returns the standard deviation with denominator N.
func PopulationStd(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	mean := Mean(vals)
	sq := 0.0
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(vals)))
}

// ZScores standardizes vals against their own population mean and standard
// deviation. A constant population has no spread and yields NaN throughout.
func ZScores(vals []float64) []float64 {
	mean, std := Mean(vals), PopulationStd(vals)
	out := make([]float64, len(vals))
	for i, v := range vals {
		if std == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (v - mean) / std
	}
	return out
}

package funding

import (
	"math"
	"slices"
)

// Score aggregates one project's non-abstained amounts.
//
// Fewer than quorum amounts score 0 whatever the method, and so does a
// project with no amounts at all. A result below minAmount is forced to 0.
func Score(amounts []float64, method ScoringMethod, quorum int, minAmount float64) float64 {
	if len(amounts) < quorum || len(amounts) == 0 {
		return 0
	}

	var score float64
	switch method {
	case MethodMean:
		score = Mean(amounts)
	case MethodMedian:
		score = Median(amounts)
	case MethodQuadratic:
		for _, a := range amounts {
			score += math.Sqrt(a)
		}
	case MethodOutliers:
		score = interquartileMean(amounts)
	default:
		score = sum(amounts)
	}

	if score < minAmount {
		return 0
	}
	return score
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean is the arithmetic mean, 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// Median averages the middle pair for even counts, 0 for no values.
func Median(values []float64) float64 {
	return quantile(values, 0.5)
}

// quantile uses linear interpolation between closest ranks, h = (n-1)q,
// which matches numpy's default.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// interquartileMean averages the values inside the inclusive [Q25, Q75] band.
func interquartileMean(values []float64) float64 {
	lo, hi := quantile(values, 0.25), quantile(values, 0.75)
	band := make([]float64, 0, len(values))
	for _, v := range values {
		if lo <= v && v <= hi {
			band = append(band, v)
		}
	}
	return Mean(band)
}

// roundCents rounds to two decimal places, ties to even.
func roundCents(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

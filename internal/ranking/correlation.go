package ranking

import (
	"math"
	"slices"
)

// KendallTauDistance counts the pairs of items that two orderings of the same
// indices rank in opposite order. Both slices must be permutations of
// 0..n-1. Identical orderings have distance 0; reversed orderings have
// n(n-1)/2.
func KendallTauDistance(a, b []int) int {
	if len(a) != len(b) {
		return -1
	}
	posB := Positions(b)
	// Sequence of b-positions read in a-order; distance is its inversion count.
	seq := make([]int, len(a))
	for i, idx := range a {
		seq[i] = posB[idx]
	}
	return countInversions(seq)
}

// NormalizedKendallTau scales KendallTauDistance into [0,1].
func NormalizedKendallTau(a, b []int) float64 {
	n := len(a)
	if n < 2 {
		return 0
	}
	d := KendallTauDistance(a, b)
	if d < 0 {
		return math.NaN()
	}
	return float64(d) / float64(n*(n-1)/2)
}

// countInversions sorts a copy of seq with merge sort, counting inversions.
func countInversions(seq []int) int {
	buf := slices.Clone(seq)
	tmp := make([]int, len(seq))
	return mergeCount(buf, tmp)
}

func mergeCount(s, tmp []int) int {
	if len(s) < 2 {
		return 0
	}
	mid := len(s) / 2
	count := mergeCount(s[:mid], tmp[:mid]) + mergeCount(s[mid:], tmp[mid:])

	i, j, k := 0, mid, 0
	for i < mid && j < len(s) {
		if s[i] <= s[j] {
			tmp[k] = s[i]
			i++
		} else {
			tmp[k] = s[j]
			count += mid - i
			j++
		}
		k++
	}
	k += copy(tmp[k:], s[i:mid])
	copy(tmp[k:], s[j:])
	copy(s, tmp[:len(s)])
	return count
}

// SpearmanRho returns the Spearman rank correlation of x and y, using average
// ranks for ties. It returns NaN when the slices differ in length, hold fewer
// than two values, or either side is constant.
func SpearmanRho(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return pearson(averageRanks(x), averageRanks(y))
}

// averageRanks assigns 1-based ascending ranks, averaging over ties.
func averageRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case values[a] < values[b]:
			return -1
		case values[a] > values[b]:
			return 1
		}
		return 0
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

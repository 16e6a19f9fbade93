package agents

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/nvandessel/votesim/internal/rng"
)

// Alignment derives a badgeholder's personal ranking from the true ranking.
//
// Each rank position is marked with probability 1-expertise, and a single
// random permutation is applied to the marked positions only; unmarked
// positions keep their project. Expertise 1 returns the true ranking and
// expertise 0 shuffles it completely. ranking is not modified.
func Alignment(r *rand.Rand, ranking []int, expertise float64) []int {
	personal := slices.Clone(ranking)

	marked := make([]int, 0, len(ranking))
	for pos := range ranking {
		if rng.Bernoulli(r, 1-expertise) {
			marked = append(marked, pos)
		}
	}
	if len(marked) < 2 {
		return personal
	}

	perm := r.Perm(len(marked))
	for k, pos := range marked {
		personal[pos] = ranking[marked[perm[k]]]
	}
	return personal
}

// RepositionCOI moves the entry at pos round(pos*factor) places toward the
// front of ranking, keeping the relative order of every other entry. Halves
// round to even. ranking is not modified.
func RepositionCOI(ranking []int, pos int, factor float64) []int {
	out := slices.Clone(ranking)
	if pos <= 0 || pos >= len(out) || factor <= 0 {
		return out
	}

	steps := min(pos, int(math.RoundToEven(float64(pos)*factor)))
	if steps <= 0 {
		return out
	}
	target := pos - steps
	item := out[pos]
	copy(out[target+1:pos+1], out[target:pos])
	out[target] = item
	return out
}

// BudgetCurve returns n non-increasing amounts that sum to total.
//
// Amounts start linearly spaced from maxVote down to minVote and are rescaled
// to total. If that pushes the first amount above maxVote, the spacing is
// rebuilt from maxVote down to the lower endpoint that makes the sum exact.
// When total exceeds n*maxVote no exact curve exists and every amount is
// capped at maxVote.
func BudgetCurve(n int, total, minVote, maxVote float64) []float64 {
	if n <= 0 {
		return []float64{}
	}

	amounts := rescale(linspace(maxVote, minVote, n), total)
	if amounts[0] > maxVote {
		low := 2*total/float64(n) - maxVote
		amounts = rescale(linspace(maxVote, low, n), total)
		for i := range amounts {
			amounts[i] = math.Min(amounts[i], maxVote)
		}
	}
	return amounts
}

// linspace mirrors numpy.linspace with the endpoint included.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// rescale multiplies values so they sum to total. A zero-sum input is
// replaced by an even split.
func rescale(values []float64, total float64) []float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	out := make([]float64, len(values))
	if sum == 0 {
		for i := range out {
			out[i] = total / float64(len(values))
		}
		return out
	}
	scale := total / sum
	for i, v := range values {
		out[i] = v * scale
	}
	return out
}

// Package ranking orders projects and measures how far one ordering is from
// another.
package ranking

import (
	"cmp"
	"slices"

	"github.com/nvandessel/votesim/internal/models"
)

// ByImpact returns project indices ordered from highest to lowest true impact.
// Projects with equal impact keep their population order.
func ByImpact(projects []*models.Project) []int {
	return ByValue(len(projects), func(i int) float64 { return projects[i].TrueImpact })
}

// ByValue returns the indices 0..n-1 ordered by descending value(i), stable
// for ties.
func ByValue(n int, value func(i int) float64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(value(b), value(a))
	})
	return order
}

// Positions inverts an ordering: the result maps each index to its rank.
func Positions(order []int) []int {
	pos := make([]int, len(order))
	for rank, idx := range order {
		pos[idx] = rank
	}
	return pos
}

package simulation

import (
	"math"
	"slices"

	"github.com/nvandessel/votesim/internal/funding"
	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/ranking"
)

// Summary describes how a round's payouts came out.
type Summary struct {
	// ProjectsAboveQuorum counts projects with a positive payout.
	ProjectsAboveQuorum float64 `json:"projects_above_quorum"`

	// QuorumPassRate is the share of projects that collected at least the
	// quorum of non-abstained votes.
	QuorumPassRate float64 `json:"quorum_pass_rate"`

	// Payout statistics over projects with a positive payout; 0 when none.
	AvgPayout    float64 `json:"avg_payout"`
	MedianPayout float64 `json:"median_payout"`
	MaxPayout    float64 `json:"max_payout"`

	// Gini and TopDecileShare measure how concentrated payouts are across
	// every project.
	Gini           float64 `json:"gini"`
	TopDecileShare float64 `json:"top_decile_share"`

	// ImpactAlignment is the Spearman correlation between payouts and true
	// impact; 0 when either side is constant.
	ImpactAlignment float64 `json:"impact_alignment"`
}

// Summarize computes outcome metrics from the payouts a funding design
// returned. Projects missing from payouts count as paid 0.
func Summarize(projects []*models.Project, payouts map[string]float64, quorum int) Summary {
	var s Summary
	if len(projects) == 0 {
		return s
	}

	all := make([]float64, len(projects))
	impacts := make([]float64, len(projects))
	var funded []float64
	passed := 0
	for i, p := range projects {
		all[i] = payouts[p.ID]
		impacts[i] = p.TrueImpact
		if all[i] > 0 {
			funded = append(funded, all[i])
		}
		if len(p.Amounts()) >= quorum {
			passed++
		}
	}

	s.ProjectsAboveQuorum = float64(len(funded))
	s.QuorumPassRate = float64(passed) / float64(len(projects))
	if len(funded) > 0 {
		s.AvgPayout = funding.Mean(funded)
		s.MedianPayout = funding.Median(funded)
		s.MaxPayout = slices.Max(funded)
	}
	s.Gini = Gini(all)
	s.TopDecileShare = TopShare(all, 0.1)
	if rho := ranking.SpearmanRho(all, impacts); !math.IsNaN(rho) {
		s.ImpactAlignment = rho
	}
	return s
}

// Gini returns the Gini coefficient of non-negative values: 0 for perfect
// equality, approaching 1 as one value takes everything. It is 0 for empty
// or all-zero input.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}
	return (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
}

// TopShare returns the share of the total held by the largest
// ceil(fraction*n) values. It is 0 when the total is 0.
func TopShare(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	slices.Reverse(sorted)

	k := max(1, int(math.Ceil(fraction*float64(len(sorted)))))
	k = min(k, len(sorted))

	var top, total float64
	for i, v := range sorted {
		if i < k {
			top += v
		}
		total += v
	}
	if total == 0 {
		return 0
	}
	return top / total
}

// meanSummary averages summaries field by field.
func meanSummary(summaries []Summary) Summary {
	var m Summary
	if len(summaries) == 0 {
		return m
	}
	for _, s := range summaries {
		m.ProjectsAboveQuorum += s.ProjectsAboveQuorum
		m.QuorumPassRate += s.QuorumPassRate
		m.AvgPayout += s.AvgPayout
		m.MedianPayout += s.MedianPayout
		m.MaxPayout += s.MaxPayout
		m.Gini += s.Gini
		m.TopDecileShare += s.TopDecileShare
		m.ImpactAlignment += s.ImpactAlignment
	}
	n := float64(len(summaries))
	m.ProjectsAboveQuorum /= n
	m.QuorumPassRate /= n
	m.AvgPayout /= n
	m.MedianPayout /= n
	m.MaxPayout /= n
	m.Gini /= n
	m.TopDecileShare /= n
	m.ImpactAlignment /= n
	return m
}

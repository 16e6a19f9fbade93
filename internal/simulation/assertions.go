package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/votesim/internal/models"
)

// AssertNoSelfFunding asserts that no badgeholder funded a project it owns.
func AssertNoSelfFunding(t *testing.T, projects []*models.Project) {
	t.Helper()
	for _, p := range projects {
		if p.OwnerID == "" {
			continue
		}
		for _, v := range p.Votes() {
			av, ok := v.(models.AllocationVote)
			if ok && av.Voter == p.OwnerID && !av.Abstained() {
				t.Errorf("AssertNoSelfFunding: %s funded its own project %s", av.Voter, p.ID)
			}
		}
	}
}

// AssertComparisonValues asserts every comparison vote prefers exactly one
// project.
func AssertComparisonValues(t *testing.T, votes []models.Vote) {
	t.Helper()
	for _, v := range votes {
		cv, ok := v.(models.ComparisonVote)
		if !ok {
			continue
		}
		if cv.FirstValue+cv.SecondValue != 1 || cv.FirstValue*cv.SecondValue != 0 {
			t.Errorf("AssertComparisonValues: %s on %s/%s has values (%d,%d)",
				cv.Voter, cv.First, cv.Second, cv.FirstValue, cv.SecondValue)
		}
	}
}

// AssertQuorumRespected asserts that projects below quorum scored and were
// paid nothing.
func AssertQuorumRespected(t *testing.T, projects []*models.Project, quorum int) {
	t.Helper()
	for _, p := range projects {
		if len(p.Amounts()) >= quorum {
			continue
		}
		if p.Score != nil && *p.Score != 0 {
			t.Errorf("AssertQuorumRespected: project %s below quorum scored %.4f", p.ID, *p.Score)
		}
		if p.TokenAmount != 0 {
			t.Errorf("AssertQuorumRespected: project %s below quorum paid %.2f", p.ID, p.TokenAmount)
		}
	}
}

// AssertPoolConserved asserts that a normalized round paid out the whole
// pool, within a cent per project. Rounds that funded nothing pass.
func AssertPoolConserved(t *testing.T, result RoundResult, pool float64) {
	t.Helper()
	var total float64
	for _, a := range result.Allocations {
		total += a
	}
	if total == 0 {
		return
	}
	tolerance := 0.01 * float64(len(result.Allocations))
	if math.Abs(total-pool) > tolerance {
		t.Errorf("AssertPoolConserved: seed %d paid %.2f, want %.2f (tolerance %.2f)", result.Seed, total, pool, tolerance)
	}
}

// AssertSameOutcome asserts that two rounds allocated identically.
func AssertSameOutcome(t *testing.T, a, b RoundResult) {
	t.Helper()
	if a.VotesCast != b.VotesCast {
		t.Errorf("AssertSameOutcome: votes cast %d != %d", a.VotesCast, b.VotesCast)
	}
	if len(a.Allocations) != len(b.Allocations) {
		t.Fatalf("AssertSameOutcome: %d allocations != %d", len(a.Allocations), len(b.Allocations))
	}
	for id, x := range a.Allocations {
		if y, ok := b.Allocations[id]; !ok || x != y {
			t.Errorf("AssertSameOutcome: project %s allocated %v vs %v", id, x, y)
		}
	}
}

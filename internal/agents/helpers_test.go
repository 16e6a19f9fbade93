package agents

import (
	"fmt"
	"testing"

	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

// newPopulation builds projects p0..pN-1 with the given true impacts.
func newPopulation(impacts ...float64) *models.ProjectPopulation {
	pop := models.NewProjectPopulation()
	for i, impact := range impacts {
		pop.Add(models.NewProject(fmt.Sprintf("p%d", i), impact, ""))
	}
	return pop
}

// readyPairwise returns a pairwise badgeholder wired to pop and a seeded generator.
func readyPairwise(t *testing.T, cfg PairwiseConfig, pop *models.ProjectPopulation, seed uint64) *PairwiseBadgeholder {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "bh"
	}
	b := NewPairwiseBadgeholder(cfg)
	b.SendApplications(pop)
	b.SetRandomGenerator(rng.New(seed))
	return b
}

// readyQuorum returns a quorum badgeholder wired to pop and a seeded generator.
func readyQuorum(t *testing.T, cfg QuorumConfig, pop *models.ProjectPopulation, seed uint64) *QuorumBadgeholder {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "bh"
	}
	b := NewQuorumBadgeholder(cfg)
	b.SendApplications(pop)
	b.SetRandomGenerator(rng.New(seed))
	return b
}

func comparisonVotes(t *testing.T, votes []models.Vote) []models.ComparisonVote {
	t.Helper()
	out := make([]models.ComparisonVote, 0, len(votes))
	for _, v := range votes {
		cv, ok := v.(models.ComparisonVote)
		if !ok {
			t.Fatalf("expected ComparisonVote, got %T", v)
		}
		out = append(out, cv)
	}
	return out
}

func allocationVotes(t *testing.T, votes []models.Vote) []models.AllocationVote {
	t.Helper()
	out := make([]models.AllocationVote, 0, len(votes))
	for _, v := range votes {
		av, ok := v.(models.AllocationVote)
		if !ok {
			t.Fatalf("expected AllocationVote, got %T", v)
		}
		out = append(out, av)
	}
	return out
}

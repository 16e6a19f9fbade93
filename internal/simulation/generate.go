package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

// impactMean and impactStdDev shape the true impact distribution.
const (
	impactMean   = 3
	impactStdDev = 1
)

// ProjectID names the i-th generated project.
func ProjectID(i int) string { return fmt.Sprintf("project-%d", i) }

// VoterID names the i-th generated badgeholder.
func VoterID(i int) string { return fmt.Sprintf("voter-%d", i) }

// GenerateProjects draws n projects. True impact is |N(3,1)|. With
// probability coiFactor a project is owned by one of numVoters badgeholders,
// chosen uniformly. Draws happen per project in order: impact, ownership
// coin, then owner.
func GenerateProjects(r *rand.Rand, n, numVoters int, coiFactor float64) []*models.Project {
	projects := make([]*models.Project, n)
	for i := range projects {
		impact := math.Abs(rng.Normal(r, impactMean, impactStdDev))
		owner := ""
		if rng.Bernoulli(r, coiFactor) && numVoters > 0 {
			owner = VoterID(r.IntN(numVoters))
		}
		projects[i] = models.NewProject(ProjectID(i), impact, owner)
	}
	return projects
}

// ownedBy indexes project IDs by owner, preserving project order.
func ownedBy(projects []*models.Project) map[string][]string {
	owned := make(map[string][]string)
	for _, p := range projects {
		if p.OwnerID != "" {
			owned[p.OwnerID] = append(owned[p.OwnerID], p.ID)
		}
	}
	return owned
}

// GenerateQuorumBadgeholders creates spec.Count identical quorum badgeholders.
// With probability spec.COIFactor a badgeholder is conflicted over one
// project it does not own, drawn uniformly. Draws happen per badgeholder in
// order: conflict coin, then project.
func GenerateQuorumBadgeholders(r *rand.Rand, spec QuorumVoterSpec, projects []*models.Project) []*agents.QuorumBadgeholder {
	out := make([]*agents.QuorumBadgeholder, spec.Count)
	for i := range out {
		id := VoterID(i)
		var coi []string
		if spec.COIFactor > 0 && rng.Bernoulli(r, spec.COIFactor) {
			if candidates := notOwnedBy(projects, id); len(candidates) > 0 {
				coi = []string{candidates[r.IntN(len(candidates))]}
			}
		}
		out[i] = agents.NewQuorumBadgeholder(agents.QuorumConfig{
			ID:           id,
			InitialFunds: spec.InitialFunds,
			MinVote:      spec.MinVote,
			MaxVote:      spec.MaxVote,
			Laziness:     spec.Laziness,
			Expertise:    spec.Expertise,
			COIFactor:    spec.COIFactor,
			COI:          coi,
		})
	}
	return out
}

// notOwnedBy lists the IDs of projects voter does not own, in project order.
func notOwnedBy(projects []*models.Project, voter string) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		if p.OwnerID != voter {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// GeneratePairwiseBadgeholders creates spec.Count identical pairwise
// badgeholders, each conflicted over every project it owns.
func GeneratePairwiseBadgeholders(spec PairwiseVoterSpec, projects []*models.Project) []*agents.PairwiseBadgeholder {
	owned := ownedBy(projects)
	out := make([]*agents.PairwiseBadgeholder, spec.Count)
	for i := range out {
		id := VoterID(i)
		out[i] = agents.NewPairwiseBadgeholder(agents.PairwiseConfig{
			ID:            id,
			Style:         spec.Style,
			Expertise:     spec.Expertise,
			Laziness:      spec.Laziness,
			COI:           owned[id],
			EngagingInCOI: spec.EngagingInCOI,
		})
	}
	return out
}

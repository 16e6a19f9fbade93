package simulation

import (
	"math/rand/v2"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/models"
)

// Electorate is the badgeholder side of a round, independent of how the
// badgeholders vote.
type Electorate interface {
	Design() VotingDesign
	SetRandomGenerator(r *rand.Rand)
	SendApplicationInformation(projects agents.ProjectSource)
	Communicate()
	CastVotes() error
	AllVotes() []models.Vote
	ResetAll()
}

// PairwiseElectorate runs a pairwise population over a shared view. A nil
// View compares every pair of the projects sent to the electorate.
type PairwiseElectorate struct {
	Population *agents.PairwisePopulation
	View       []agents.Pair

	projects agents.ProjectSource
}

func (e *PairwiseElectorate) Design() VotingDesign { return DesignPairwise }

func (e *PairwiseElectorate) SetRandomGenerator(r *rand.Rand) {
	e.Population.SetRandomGenerator(r)
}

func (e *PairwiseElectorate) SendApplicationInformation(projects agents.ProjectSource) {
	e.projects = projects
	e.Population.SendApplicationInformation(projects)
}

func (e *PairwiseElectorate) Communicate() { e.Population.Communicate() }

// CastVotes has every badgeholder judge the view.
func (e *PairwiseElectorate) CastVotes() error {
	view := e.View
	if view == nil && e.projects != nil {
		view = agents.AllPairs(e.projects.Projects())
	}
	return e.Population.CastVotes(view)
}

func (e *PairwiseElectorate) AllVotes() []models.Vote { return e.Population.AllVotes() }

func (e *PairwiseElectorate) ResetAll() { e.Population.ResetAll() }

// QuorumElectorate runs a quorum population.
type QuorumElectorate struct {
	Population *agents.QuorumPopulation
}

func (e *QuorumElectorate) Design() VotingDesign { return DesignQuorum }

func (e *QuorumElectorate) SetRandomGenerator(r *rand.Rand) {
	e.Population.SetRandomGenerator(r)
}

func (e *QuorumElectorate) SendApplicationInformation(projects agents.ProjectSource) {
	e.Population.SendApplicationInformation(projects)
}

func (e *QuorumElectorate) Communicate() { e.Population.Communicate() }

func (e *QuorumElectorate) CastVotes() error { return e.Population.CastVotes() }

func (e *QuorumElectorate) AllVotes() []models.Vote { return e.Population.AllVotes() }

func (e *QuorumElectorate) ResetAll() { e.Population.ResetAll() }

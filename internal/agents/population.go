package agents

import (
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/votesim/internal/models"
)

// Population is an ordered collection of badgeholders of one kind. It fans
// out project information and the shared generator, and collects votes.
type Population[B Badgeholder] struct {
	badgeholders []B
}

// Add appends badgeholders in order.
func (p *Population[B]) Add(badgeholders ...B) {
	p.badgeholders = append(p.badgeholders, badgeholders...)
}

// Badgeholders returns the members in population order.
func (p *Population[B]) Badgeholders() []B {
	return p.badgeholders
}

// Get returns the badgeholder with the given ID.
func (p *Population[B]) Get(id string) (B, bool) {
	for _, b := range p.badgeholders {
		if b.ID() == id {
			return b, true
		}
	}
	var zero B
	return zero, false
}

// Len returns the number of badgeholders.
func (p *Population[B]) Len() int {
	return len(p.badgeholders)
}

// SendApplicationInformation hands projects to every badgeholder.
func (p *Population[B]) SendApplicationInformation(projects ProjectSource) {
	for _, b := range p.badgeholders {
		b.SendApplications(projects)
	}
}

// SetRandomGenerator hands the same generator to every badgeholder.
func (p *Population[B]) SetRandomGenerator(r *rand.Rand) {
	for _, b := range p.badgeholders {
		b.SetRandomGenerator(r)
	}
}

// Communicate lets badgeholders influence each other before voting.
// No communication scheme is modelled yet.
func (p *Population[B]) Communicate() {}

// AllVotes flattens every badgeholder's votes in population order.
func (p *Population[B]) AllVotes() []models.Vote {
	var all []models.Vote
	for _, b := range p.badgeholders {
		all = append(all, b.Votes()...)
	}
	return all
}

// ResetAll resets every badgeholder.
func (p *Population[B]) ResetAll() {
	for _, b := range p.badgeholders {
		b.Reset()
	}
}

// PairwisePopulation coordinates pairwise badgeholders over a shared view.
type PairwisePopulation struct {
	Population[*PairwiseBadgeholder]
}

// NewPairwisePopulation creates a population from badgeholders in order.
func NewPairwisePopulation(badgeholders ...*PairwiseBadgeholder) *PairwisePopulation {
	pop := &PairwisePopulation{}
	pop.Add(badgeholders...)
	return pop
}

// CastVotes asks every badgeholder, in order, to judge the same view.
func (p *PairwisePopulation) CastVotes(view []Pair) error {
	for _, b := range p.badgeholders {
		if err := b.CastVotes(view); err != nil {
			return fmt.Errorf("badgeholder %s: %w", b.ID(), err)
		}
	}
	return nil
}

// QuorumPopulation coordinates quorum badgeholders.
type QuorumPopulation struct {
	Population[*QuorumBadgeholder]
}

// NewQuorumPopulation creates a population from badgeholders in order.
func NewQuorumPopulation(badgeholders ...*QuorumBadgeholder) *QuorumPopulation {
	pop := &QuorumPopulation{}
	pop.Add(badgeholders...)
	return pop
}

// CastVotes runs each badgeholder's allocation pass in order.
func (p *QuorumPopulation) CastVotes() error {
	for _, b := range p.badgeholders {
		if err := b.CastVotes(); err != nil {
			return fmt.Errorf("badgeholder %s: %w", b.ID(), err)
		}
	}
	return nil
}

// FundsSpent sums the funds spent by every badgeholder this round.
func (p *QuorumPopulation) FundsSpent() float64 {
	var total float64
	for _, b := range p.badgeholders {
		total += b.FundsSpent()
	}
	return total
}

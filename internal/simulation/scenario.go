package simulation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/constants"
	"github.com/nvandessel/votesim/internal/funding"
)

// ErrInvalidScenario is returned for scenarios that cannot be run.
var ErrInvalidScenario = errors.New("invalid scenario")

// VotingDesign selects which kind of electorate a scenario generates.
type VotingDesign string

const (
	DesignQuorum   VotingDesign = "quorum"
	DesignPairwise VotingDesign = "pairwise"
)

// ParseVotingDesign maps a design name to its value. The empty string
// selects DesignQuorum.
func ParseVotingDesign(s string) (VotingDesign, error) {
	switch VotingDesign(strings.ToLower(strings.TrimSpace(s))) {
	case "", DesignQuorum:
		return DesignQuorum, nil
	case DesignPairwise:
		return DesignPairwise, nil
	}
	return "", fmt.Errorf("%w: unknown voting design %q", ErrInvalidScenario, s)
}

// Scenario describes a complete experiment setup.
type Scenario struct {
	Name   string
	Seed   uint64
	Design VotingDesign

	Projects       ProjectSpec
	QuorumVoters   QuorumVoterSpec
	PairwiseVoters PairwiseVoterSpec
	Funding        FundingSpec
}

// ProjectSpec controls project generation.
type ProjectSpec struct {
	Count int

	// COIFactor is the probability that a project is owned by a randomly
	// chosen badgeholder.
	COIFactor float64
}

// QuorumVoterSpec controls quorum badgeholder generation. Every badgeholder
// shares these parameters.
type QuorumVoterSpec struct {
	Count        int
	InitialFunds float64
	MinVote      float64
	MaxVote      float64
	Laziness     float64
	Expertise    float64

	// COIFactor is both the probability that a badgeholder is conflicted
	// over a project it does not own and how far it pulls that project
	// toward the top of its ranking. 0 disables conflicts of interest.
	COIFactor float64
}

// PairwiseVoterSpec controls pairwise badgeholder generation.
type PairwiseVoterSpec struct {
	Count     int
	Style     agents.VotingStyle
	Expertise float64
	Laziness  float64

	// EngagingInCOI makes badgeholders favour every project they own.
	EngagingInCOI bool
}

// FundingSpec configures the funding pool the round's votes feed.
type FundingSpec struct {
	funding.Params
	MaxFunding float64
	Normalize  bool
}

// Pool builds the funding design described by the spec.
func (f FundingSpec) Pool() *funding.Pool {
	return funding.NewPool(f.Params, f.MaxFunding, f.Normalize)
}

// DefaultScenario returns a quorum scenario sized like a real funding round.
func DefaultScenario() Scenario {
	return Scenario{
		Name:   "default",
		Seed:   constants.DefaultSeed,
		Design: DesignQuorum,
		Projects: ProjectSpec{
			Count:     constants.DefaultProjectCount,
			COIFactor: 0,
		},
		QuorumVoters: QuorumVoterSpec{
			Count:        constants.DefaultVoterCount,
			InitialFunds: constants.DefaultMaxFunding,
			MinVote:      constants.DefaultMinVote,
			MaxVote:      constants.DefaultMaxVote,
			Laziness:     constants.DefaultLaziness,
			Expertise:    constants.DefaultExpertise,
		},
		PairwiseVoters: PairwiseVoterSpec{
			Count:     constants.DefaultVoterCount,
			Style:     agents.StyleSkewedTowardsImpact,
			Expertise: constants.DefaultExpertise,
			Laziness:  constants.DefaultLaziness,
		},
		Funding: FundingSpec{
			Params: funding.Params{
				Method:    funding.MethodMedian,
				Quorum:    constants.DefaultQuorum,
				MinAmount: constants.DefaultMinAmount,
			},
			MaxFunding: constants.DefaultMaxFunding,
			Normalize:  true,
		},
	}
}

// Validate checks the parts of the scenario its design uses.
func (s Scenario) Validate() error {
	if _, err := ParseVotingDesign(string(s.Design)); err != nil {
		return err
	}
	if s.Projects.Count < 0 {
		return fmt.Errorf("%w: project count must be non-negative, got %d", ErrInvalidScenario, s.Projects.Count)
	}
	if err := unitInterval("projects.coi_factor", s.Projects.COIFactor); err != nil {
		return err
	}

	switch s.Design {
	case DesignPairwise:
		v := s.PairwiseVoters
		if v.Count < 0 {
			return fmt.Errorf("%w: voter count must be non-negative, got %d", ErrInvalidScenario, v.Count)
		}
		if _, err := agents.ParseVotingStyle(v.Style.String()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		if err := unitInterval("pairwise_voters.expertise", v.Expertise); err != nil {
			return err
		}
		if err := unitInterval("pairwise_voters.laziness", v.Laziness); err != nil {
			return err
		}
	default:
		v := s.QuorumVoters
		if v.Count < 0 {
			return fmt.Errorf("%w: voter count must be non-negative, got %d", ErrInvalidScenario, v.Count)
		}
		if err := (agents.QuorumConfig{
			ID:           "template",
			InitialFunds: v.InitialFunds,
			MinVote:      v.MinVote,
			MaxVote:      v.MaxVote,
			Laziness:     v.Laziness,
			Expertise:    v.Expertise,
			COIFactor:    v.COIFactor,
		}).Validate(); err != nil {
			return fmt.Errorf("%w: quorum_voters: %w", ErrInvalidScenario, err)
		}
	}

	if err := s.Funding.Pool().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return nil
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %f", ErrInvalidScenario, name, v)
	}
	return nil
}

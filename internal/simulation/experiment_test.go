package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/funding"
)

func smallScenario(design VotingDesign) Scenario {
	return Scenario{
		Name:     "small",
		Seed:     10,
		Design:   design,
		Projects: ProjectSpec{Count: 8, COIFactor: 0.5},
		QuorumVoters: QuorumVoterSpec{
			Count: 6, InitialFunds: 100, MinVote: 1, MaxVote: 40,
			Laziness: 0.25, Expertise: 0.6, COIFactor: 0.5,
		},
		PairwiseVoters: PairwiseVoterSpec{
			Count: 6, Style: agents.StyleSkewedTowardsImpact,
			Expertise: 0.6, Laziness: 0.5, EngagingInCOI: true,
		},
		Funding: FundingSpec{
			Params:     funding.Params{Method: funding.MethodMean, Quorum: 2},
			MaxFunding: 10_000,
			Normalize:  true,
		},
	}
}

func TestExperiment_Run(t *testing.T) {
	for _, design := range []VotingDesign{DesignQuorum, DesignPairwise} {
		t.Run(string(design), func(t *testing.T) {
			exp := Experiment{Scenario: smallScenario(design), Runs: 4}
			result, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if len(result.Rounds) != 4 {
				t.Fatalf("ran %d rounds, want 4", len(result.Rounds))
			}
			for i, rr := range result.Rounds {
				if rr.Seed != 10+uint64(i) {
					t.Errorf("round %d seed = %d, want %d", i, rr.Seed, 10+i)
				}
				if rr.Design != design {
					t.Errorf("round %d design = %s", i, rr.Design)
				}
				AssertPoolConserved(t, rr, 10_000)
			}
			if len(result.Projects) != 8 {
				t.Errorf("averaged %d projects, want 8", len(result.Projects))
			}
		})
	}
}

func TestExperiment_ResetsBetweenRounds(t *testing.T) {
	exp := Experiment{Scenario: smallScenario(DesignQuorum), Runs: 3}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Quorum badgeholders vote on every project once per round.
	for i, rr := range result.Rounds {
		for _, p := range rr.Projects {
			if p.NumVotes != 6 {
				t.Errorf("round %d project %s has %d votes, want 6", i, p.ProjectID, p.NumVotes)
			}
		}
	}
	for _, p := range result.Projects {
		if p.MeanVotes != 6 {
			t.Errorf("project %s mean votes = %v, want 6", p.ProjectID, p.MeanVotes)
		}
	}
}

func TestExperiment_MeanSummary(t *testing.T) {
	exp := Experiment{Scenario: smallScenario(DesignQuorum), Runs: 3}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var sum float64
	for _, rr := range result.Rounds {
		sum += rr.Summary.AvgPayout
	}
	if got, want := result.Mean.AvgPayout, sum/3; got != want {
		t.Errorf("Mean.AvgPayout = %v, want %v", got, want)
	}
}

func TestExperiment_Reproducible(t *testing.T) {
	run := func() ExperimentResult {
		t.Helper()
		exp := Experiment{Scenario: smallScenario(DesignPairwise), Runs: 2}
		result, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return result
	}
	a, b := run(), run()
	for i := range a.Rounds {
		AssertSameOutcome(t, a.Rounds[i], b.Rounds[i])
	}
}

func TestExperiment_Errors(t *testing.T) {
	t.Run("no runs", func(t *testing.T) {
		exp := Experiment{Scenario: smallScenario(DesignQuorum)}
		if _, err := exp.Run(context.Background()); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Run() error = %v, want ErrInvalidScenario", err)
		}
	})

	t.Run("invalid scenario", func(t *testing.T) {
		s := smallScenario(DesignQuorum)
		s.QuorumVoters.Laziness = 2
		exp := Experiment{Scenario: s, Runs: 1}
		if _, err := exp.Run(context.Background()); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Run() error = %v, want ErrInvalidScenario", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		exp := Experiment{Scenario: smallScenario(DesignQuorum), Runs: 2}
		if _, err := exp.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr bool
	}{
		{"default", func(s *Scenario) { *s = DefaultScenario() }, false},
		{"small pairwise", func(s *Scenario) { s.Design = DesignPairwise }, false},
		{"unknown design", func(s *Scenario) { s.Design = "ranked" }, true},
		{"negative projects", func(s *Scenario) { s.Projects.Count = -1 }, true},
		{"project coi out of range", func(s *Scenario) { s.Projects.COIFactor = 1.5 }, true},
		{"bad vote bounds", func(s *Scenario) { s.QuorumVoters.MinVote = 100 }, true},
		{"bad pairwise style", func(s *Scenario) {
			s.Design = DesignPairwise
			s.PairwiseVoters.Style = agents.VotingStyle(7)
		}, true},
		{"pairwise ignores quorum voters", func(s *Scenario) {
			s.Design = DesignPairwise
			s.QuorumVoters.Laziness = 5
		}, false},
		{"negative pool", func(s *Scenario) { s.Funding.MaxFunding = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := smallScenario(DesignQuorum)
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("Validate() error = %v, want ErrInvalidScenario", err)
			}
		})
	}
}

func TestParseVotingDesign(t *testing.T) {
	tests := []struct {
		in      string
		want    VotingDesign
		wantErr bool
	}{
		{"", DesignQuorum, false},
		{"Quorum", DesignQuorum, false},
		{"pairwise", DesignPairwise, false},
		{"ranked", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVotingDesign(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseVotingDesign(%q) = %q, %v", tt.in, got, err)
		}
	}
}

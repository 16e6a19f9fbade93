package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/logging"
	"github.com/nvandessel/votesim/internal/metrics"
	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

// Experiment repeats a scenario's round over consecutive seeds.
type Experiment struct {
	Scenario Scenario
	Runs     int

	Logger  *slog.Logger
	Trace   *logging.TraceLogger
	Metrics *metrics.Recorder
}

// ProjectAverage is a project's outcome averaged over every round.
type ProjectAverage struct {
	ProjectID       string  `json:"project_id"`
	OwnerID         string  `json:"owner_id,omitempty"`
	TrueImpact      float64 `json:"true_impact"`
	MeanVotes       float64 `json:"mean_votes"`
	MeanScore       float64 `json:"mean_score"`
	MeanTokenAmount float64 `json:"mean_token_amount"`
}

// ExperimentResult holds every round and their averages.
type ExperimentResult struct {
	Scenario Scenario         `json:"scenario"`
	Rounds   []RoundResult    `json:"rounds"`
	Mean     Summary          `json:"mean"`
	Projects []ProjectAverage `json:"projects"`
}

// Run generates the scenario's populations from its seed, then runs Runs
// rounds seeded Seed, Seed+1, and so on. Cancellation is checked between
// rounds.
func (e *Experiment) Run(ctx context.Context) (ExperimentResult, error) {
	s := e.Scenario
	if err := s.Validate(); err != nil {
		return ExperimentResult{}, err
	}
	if e.Runs < 1 {
		return ExperimentResult{}, fmt.Errorf("%w: runs must be at least 1, got %d", ErrInvalidScenario, e.Runs)
	}

	logger := e.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	projects, voters := e.build()
	design := s.Funding.Pool()

	logger.Info("experiment starting",
		"scenario", s.Name,
		"design", voters.Design(),
		"projects", projects.Len(),
		"runs", e.Runs,
		"seed", s.Seed,
	)

	result := ExperimentResult{Scenario: s, Rounds: make([]RoundResult, 0, e.Runs)}
	summaries := make([]Summary, 0, e.Runs)
	for i := range e.Runs {
		if err := ctx.Err(); err != nil {
			return ExperimentResult{}, fmt.Errorf("experiment stopped after %d of %d rounds: %w", i, e.Runs, err)
		}

		projects.Reset()
		voters.ResetAll()

		round := Round{
			Projects: projects,
			Voters:   voters,
			Design:   design,
			Seed:     s.Seed + uint64(i),
			Quorum:   s.Funding.Quorum,
			Logger:   logger,
			Trace:    e.Trace,
			Metrics:  e.Metrics,
		}
		rr, err := round.Run(ctx)
		if err != nil {
			return ExperimentResult{}, fmt.Errorf("round %d (seed %d): %w", i, round.Seed, err)
		}
		result.Rounds = append(result.Rounds, rr)
		summaries = append(summaries, rr.Summary)
	}

	result.Mean = meanSummary(summaries)
	result.Projects = averageProjects(result.Rounds)

	logger.Info("experiment finished",
		"scenario", s.Name,
		"funded", result.Mean.ProjectsAboveQuorum,
		"avg_payout", result.Mean.AvgPayout,
		"gini", result.Mean.Gini,
	)
	return result, nil
}

// build draws the project population from the scenario seed and creates the
// electorate for its design. Conflicts of interest continue the same stream.
func (e *Experiment) build() (*models.ProjectPopulation, Electorate) {
	s := e.Scenario
	numVoters := s.QuorumVoters.Count
	if s.Design == DesignPairwise {
		numVoters = s.PairwiseVoters.Count
	}

	r := rng.New(s.Seed)
	generated := GenerateProjects(r, s.Projects.Count, numVoters, s.Projects.COIFactor)
	projects := models.NewProjectPopulation(generated...)

	if s.Design == DesignPairwise {
		return projects, &PairwiseElectorate{
			Population: agents.NewPairwisePopulation(GeneratePairwiseBadgeholders(s.PairwiseVoters, generated)...),
		}
	}
	return projects, &QuorumElectorate{
		Population: agents.NewQuorumPopulation(GenerateQuorumBadgeholders(r, s.QuorumVoters, generated)...),
	}
}

func averageProjects(rounds []RoundResult) []ProjectAverage {
	if len(rounds) == 0 {
		return nil
	}
	n := float64(len(rounds))
	out := make([]ProjectAverage, len(rounds[0].Projects))
	for i, p := range rounds[0].Projects {
		out[i] = ProjectAverage{ProjectID: p.ProjectID, OwnerID: p.OwnerID, TrueImpact: p.TrueImpact}
	}
	for _, rr := range rounds {
		for i, p := range rr.Projects {
			out[i].MeanVotes += float64(p.NumVotes) / n
			out[i].MeanTokenAmount += p.TokenAmount / n
			if p.Score != nil {
				out[i].MeanScore += *p.Score / n
			}
		}
	}
	return out
}

package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/votesim/internal/funding"
	"github.com/nvandessel/votesim/internal/logging"
	"github.com/nvandessel/votesim/internal/metrics"
	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

// Round is a single election over a fixed project population.
type Round struct {
	Projects *models.ProjectPopulation
	Voters   Electorate
	Design   funding.Design
	Seed     uint64

	// Quorum is used only to report the quorum pass rate.
	Quorum int

	// Optional observers. Nil values are ignored.
	Logger  *slog.Logger
	Trace   *logging.TraceLogger
	Metrics *metrics.Recorder
}

// RoundResult captures the outcome of one round.
type RoundResult struct {
	Seed        uint64                 `json:"seed"`
	Design      VotingDesign           `json:"design"`
	VotesCast   int                    `json:"votes_cast"`
	Allocations map[string]float64     `json:"allocations"`
	Projects    []models.ProjectResult `json:"projects"`
	Summary     Summary                `json:"summary"`
	Duration    time.Duration          `json:"duration_ns"`
}

// Run executes the round. Round state already on the projects and
// badgeholders is not cleared; callers running several rounds over the same
// populations reset them in between.
func (r *Round) Run(ctx context.Context) (RoundResult, error) {
	if r.Projects == nil || r.Voters == nil || r.Design == nil {
		return RoundResult{}, fmt.Errorf("%w: round needs projects, voters and a funding design", ErrInvalidScenario)
	}
	if err := ctx.Err(); err != nil {
		return RoundResult{}, err
	}

	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	start := time.Now()
	design := r.Voters.Design()

	logger.Debug("round starting", "seed", r.Seed, "design", design, "projects", r.Projects.Len())
	r.Trace.Log(map[string]any{
		"event":    "round_started",
		"seed":     r.Seed,
		"design":   string(design),
		"projects": r.Projects.Len(),
	})

	r.Voters.SetRandomGenerator(rng.New(r.Seed))
	r.Voters.SendApplicationInformation(r.Projects)
	r.Voters.Communicate()
	if err := r.Voters.CastVotes(); err != nil {
		return RoundResult{}, fmt.Errorf("casting votes: %w", err)
	}

	votes := r.Voters.AllVotes()
	r.traceVotes(votes)

	projects := r.Projects.Projects()
	allocations, err := r.Design.Allocate(projects)
	if err != nil {
		return RoundResult{}, fmt.Errorf("allocating funds: %w", err)
	}

	elapsed := time.Since(start)
	summary := Summarize(projects, allocations, r.Quorum)

	var allocated float64
	for _, a := range allocations {
		allocated += a
	}
	r.Metrics.ObserveVotes(votes)
	r.Metrics.ObserveRound(string(design), allocated, elapsed)

	logger.Debug("round finished",
		"seed", r.Seed,
		"votes", len(votes),
		"funded", summary.ProjectsAboveQuorum,
		"allocated", allocated,
		"elapsed", elapsed,
	)
	r.Trace.Log(map[string]any{
		"event":     "round_finished",
		"seed":      r.Seed,
		"votes":     len(votes),
		"allocated": allocated,
		"summary":   summary,
	})

	return RoundResult{
		Seed:        r.Seed,
		Design:      design,
		VotesCast:   len(votes),
		Allocations: allocations,
		Projects:    r.Projects.Results(),
		Summary:     summary,
		Duration:    elapsed,
	}, nil
}

func (r *Round) traceVotes(votes []models.Vote) {
	if !r.Trace.TracesVotes() {
		return
	}
	for _, v := range votes {
		r.Trace.Log(map[string]any{
			"event": "vote",
			"seed":  r.Seed,
			"kind":  string(v.Kind()),
			"vote":  v,
		})
	}
}

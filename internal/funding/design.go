package funding

import (
	"fmt"

	"github.com/nvandessel/votesim/internal/models"
)

// Design converts the votes attached to projects into per-project values.
// Implementations write their results onto the projects in place.
type Design interface {
	Allocate(projects []*models.Project) (map[string]float64, error)
}

// Params is the scoring core shared by every design.
type Params struct {
	Method ScoringMethod `json:"scoring_method" yaml:"scoring_method"`

	// Quorum is the minimum number of non-abstained amounts a project needs
	// to score at all.
	Quorum int `json:"quorum" yaml:"quorum"`

	// MinAmount zeroes any score below it.
	MinAmount float64 `json:"min_amount" yaml:"min_amount"`
}

// Validate checks the scoring parameters.
func (p Params) Validate() error {
	if !p.Method.Valid() {
		return fmt.Errorf("%w: unknown scoring method %d", ErrInvalidDesign, int(p.Method))
	}
	if p.Quorum < 0 {
		return fmt.Errorf("%w: quorum must be non-negative, got %d", ErrInvalidDesign, p.Quorum)
	}
	if p.MinAmount < 0 {
		return fmt.Errorf("%w: min amount must be non-negative, got %f", ErrInvalidDesign, p.MinAmount)
	}
	return nil
}

// score computes and records the score of every project, in order.
func (p Params) score(projects []*models.Project) []float64 {
	scores := make([]float64, len(projects))
	for i, project := range projects {
		scores[i] = Score(project.Amounts(), p.Method, p.Quorum, p.MinAmount)
		project.SetScore(scores[i])
	}
	return scores
}

// ThresholdAndAggregate scores projects without a funding pool. Allocate
// returns project ID to score.
type ThresholdAndAggregate struct {
	Params
}

// NewThresholdAndAggregate creates the scoring-only design.
func NewThresholdAndAggregate(method ScoringMethod, quorum int, minAmount float64) *ThresholdAndAggregate {
	return &ThresholdAndAggregate{Params: Params{Method: method, Quorum: quorum, MinAmount: minAmount}}
}

// Allocate scores every project and writes Score in place.
func (d *ThresholdAndAggregate) Allocate(projects []*models.Project) (map[string]float64, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	scores := d.score(projects)
	out := make(map[string]float64, len(projects))
	for i, p := range projects {
		out[p.ID] = scores[i]
	}
	return out, nil
}

// Pool scores projects and pays them out of a fixed funding pool.
//
// With Normalize set, a project's payout is its share of the summed scores
// times MaxFunding, rounded to two decimals; every payout is 0 when the
// scores sum to 0. Without it the raw score is the payout.
type Pool struct {
	Params
	MaxFunding float64 `json:"max_funding" yaml:"max_funding"`
	Normalize  bool    `json:"normalize" yaml:"normalize"`
}

// NewPool creates a funding-pool design.
func NewPool(params Params, maxFunding float64, normalize bool) *Pool {
	return &Pool{Params: params, MaxFunding: maxFunding, Normalize: normalize}
}

// Validate checks the scoring parameters and the pool size.
func (d *Pool) Validate() error {
	if err := d.Params.Validate(); err != nil {
		return err
	}
	if d.MaxFunding < 0 {
		return fmt.Errorf("%w: max funding must be non-negative, got %f", ErrInvalidDesign, d.MaxFunding)
	}
	return nil
}

// Allocate scores every project, writes Score and TokenAmount in place, and
// returns project ID to payout.
func (d *Pool) Allocate(projects []*models.Project) (map[string]float64, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	scores := d.score(projects)
	total := sum(scores)

	out := make(map[string]float64, len(projects))
	for i, p := range projects {
		payout := scores[i]
		if d.Normalize {
			payout = 0
			if total != 0 {
				payout = roundCents(scores[i] / total * d.MaxFunding)
			}
		}
		p.TokenAmount = payout
		out[p.ID] = payout
	}
	return out, nil
}

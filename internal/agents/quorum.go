package agents

import (
	"fmt"
	"math"

	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/ranking"
)

// amountTolerance absorbs rescaling error when comparing an amount to the
// minimum vote.
const amountTolerance = 1e-9

// QuorumConfig configures a QuorumBadgeholder.
type QuorumConfig struct {
	ID string

	// InitialFunds is the budget restored on every Reset.
	InitialFunds float64

	// MinVote and MaxVote bound every non-abstained amount.
	MinVote float64
	MaxVote float64

	// Laziness in [0,1] is the fraction of projects left off the ballot.
	Laziness float64

	// Expertise in [0,1] controls how closely the personal ranking tracks
	// the true ranking.
	Expertise float64

	// COIFactor in [0,1] controls how far the conflicted project is pulled
	// toward first place.
	COIFactor float64

	// COI holds at most one conflicted project ID.
	COI []string
}

// Validate checks parameter ranges.
func (c QuorumConfig) Validate() error {
	if len(c.COI) > 1 {
		return fmt.Errorf("%w: badgeholder %s has %d conflict-of-interest projects, at most 1 is supported",
			ErrUnsupportedConfiguration, c.ID, len(c.COI))
	}
	for name, v := range map[string]float64{
		"laziness":   c.Laziness,
		"expertise":  c.Expertise,
		"coi_factor": c.COIFactor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %f", ErrUnsupportedConfiguration, name, v)
		}
	}
	if c.MinVote < 0 || c.MaxVote < c.MinVote {
		return fmt.Errorf("%w: vote bounds [%f, %f] are invalid", ErrUnsupportedConfiguration, c.MinVote, c.MaxVote)
	}
	if c.InitialFunds < 0 {
		return fmt.Errorf("%w: initial funds must be non-negative, got %f", ErrUnsupportedConfiguration, c.InitialFunds)
	}
	return nil
}

// QuorumBadgeholder ranks every project and spreads its budget over the top
// of that ranking, emitting one allocation vote per project.
type QuorumBadgeholder struct {
	base
	initialFunds float64
	totalFunds   float64
	fundsSpent   float64
	minVote      float64
	maxVote      float64
	laziness     float64
	expertise    float64
	coiFactor    float64
	coi          []string
}

// BallotEntry is one line of a quorum badgeholder's ballot. Amount is nil for
// abstentions.
type BallotEntry struct {
	ProjectID string   `json:"project_id"`
	Amount    *float64 `json:"amount"`
}

// NewQuorumBadgeholder creates a quorum badgeholder from cfg.
func NewQuorumBadgeholder(cfg QuorumConfig) *QuorumBadgeholder {
	return &QuorumBadgeholder{
		base:         base{id: cfg.ID, votes: make([]models.Vote, 0)},
		initialFunds: cfg.InitialFunds,
		totalFunds:   cfg.InitialFunds,
		minVote:      cfg.MinVote,
		maxVote:      cfg.MaxVote,
		laziness:     cfg.Laziness,
		expertise:    cfg.Expertise,
		coiFactor:    cfg.COIFactor,
		coi:          append([]string(nil), cfg.COI...),
	}
}

// TotalFunds is the budget available this round.
func (b *QuorumBadgeholder) TotalFunds() float64 { return b.totalFunds }

// FundsSpent is the sum of every non-abstained amount cast this round.
func (b *QuorumBadgeholder) FundsSpent() float64 { return b.fundsSpent }

// COI returns the conflicted project IDs.
func (b *QuorumBadgeholder) COI() []string { return append([]string(nil), b.coi...) }

// RemainingFunds is the unspent part of the budget.
func (b *QuorumBadgeholder) RemainingFunds() float64 { return b.totalFunds - b.fundsSpent }

// Reset clears votes and restores the initial budget.
func (b *QuorumBadgeholder) Reset() {
	b.votes = make([]models.Vote, 0)
	b.totalFunds = b.initialFunds
	b.fundsSpent = 0
}

// Ballot lists the badgeholder's votes as project/amount entries.
func (b *QuorumBadgeholder) Ballot() []BallotEntry {
	entries := make([]BallotEntry, 0, len(b.votes))
	for _, v := range b.votes {
		av, ok := v.(models.AllocationVote)
		if !ok {
			continue
		}
		e := BallotEntry{ProjectID: av.Project}
		if amount, ok := av.Amount(); ok {
			e.Amount = &amount
		}
		entries = append(entries, e)
	}
	return entries
}

// CastVotes ranks the assigned projects, sizes the ballot and allocates the
// budget curve down the ranking. Every project receives exactly one vote;
// projects off the ballot, below the minimum, or owned by the badgeholder
// receive an abstention.
func (b *QuorumBadgeholder) CastVotes() error {
	if err := b.ready(); err != nil {
		return err
	}
	if len(b.coi) > 1 {
		return fmt.Errorf("%w: badgeholder %s has %d conflict-of-interest projects, at most 1 is supported",
			ErrUnsupportedConfiguration, b.id, len(b.coi))
	}

	var coiProject *models.Project
	if len(b.coi) == 1 {
		p, err := b.lookup(b.coi[0])
		if err != nil {
			return err
		}
		coiProject = p
	}

	projects := b.projects.Projects()
	personal := Alignment(b.rng, ranking.ByImpact(projects), b.expertise)

	if coiProject != nil && b.coiFactor > 0 {
		for pos, idx := range personal {
			if projects[idx].ID == coiProject.ID {
				personal = RepositionCOI(personal, pos, b.coiFactor)
				break
			}
		}
	}

	ballotSize := int(math.Floor((1 - b.laziness) * float64(len(projects))))
	curve := BudgetCurve(ballotSize, b.totalFunds, b.minVote, b.maxVote)

	for rank, idx := range personal {
		p := projects[idx]
		switch {
		case rank >= ballotSize, b.owns(p), curve[rank] < b.minVote-amountTolerance:
			b.record(models.NewAbstention(b.id, p.ID), p)
		default:
			b.fundsSpent += curve[rank]
			b.record(models.NewAllocationVote(b.id, p.ID, curve[rank]), p)
		}
	}
	return nil
}

func (b *QuorumBadgeholder) owns(p *models.Project) bool {
	return p.OwnerID != "" && p.OwnerID == b.id
}

package agents

import (
	"fmt"
	"math"

	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

// Pair is one comparison a pairwise badgeholder is asked to judge.
type Pair struct {
	First  *models.Project
	Second *models.Project
}

// PairwiseConfig configures a PairwiseBadgeholder.
type PairwiseConfig struct {
	ID    string
	Style VotingStyle

	// Expertise in [0,1]: 0 judges by coin flip, 1 always prefers the
	// project with the higher true impact.
	Expertise float64

	// Laziness in [0,1] is the fraction of the view left unjudged.
	Laziness float64

	// COI lists projects the badgeholder has a conflict of interest with.
	// They are only favoured when EngagingInCOI is set.
	COI           []string
	EngagingInCOI bool
}

// PairwiseBadgeholder judges pairs of projects and emits comparison votes.
type PairwiseBadgeholder struct {
	base
	style         VotingStyle
	expertise     float64
	laziness      float64
	coi           map[string]bool
	engagingInCOI bool
}

// NewPairwiseBadgeholder creates a pairwise badgeholder from cfg.
func NewPairwiseBadgeholder(cfg PairwiseConfig) *PairwiseBadgeholder {
	coi := make(map[string]bool, len(cfg.COI))
	for _, id := range cfg.COI {
		coi[id] = true
	}
	return &PairwiseBadgeholder{
		base:          base{id: cfg.ID, votes: make([]models.Vote, 0)},
		style:         cfg.Style,
		expertise:     cfg.Expertise,
		laziness:      cfg.Laziness,
		coi:           coi,
		engagingInCOI: cfg.EngagingInCOI,
	}
}

// Style returns the badgeholder's judgement model.
func (b *PairwiseBadgeholder) Style() VotingStyle { return b.style }

// Reset clears the votes cast in the previous round.
func (b *PairwiseBadgeholder) Reset() {
	b.votes = make([]models.Vote, 0)
}

// CastVotes judges the pairs in view and records one comparison vote per
// judged pair on the badgeholder and on both projects of the pair.
func (b *PairwiseBadgeholder) CastVotes(view []Pair) error {
	if err := b.ready(); err != nil {
		return err
	}

	var cast func([]Pair)
	switch b.style {
	case StylePerfect:
		cast = b.castPerfect
	case StyleRandom:
		cast = b.castRandom
	case StyleSkewedTowardsImpact:
		cast = b.castSkewed
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedStyle, b.style)
	}

	resolved, err := b.resolve(view)
	if err != nil {
		return err
	}
	cast(resolved)
	return nil
}

// resolve maps every pair onto the projects of the assigned population.
func (b *PairwiseBadgeholder) resolve(view []Pair) ([]Pair, error) {
	resolved := make([]Pair, len(view))
	for i, pair := range view {
		if pair.First == nil || pair.Second == nil {
			return nil, fmt.Errorf("%w: pair %d has a missing project", ErrUnknownProject, i)
		}
		first, err := b.lookup(pair.First.ID)
		if err != nil {
			return nil, err
		}
		second, err := b.lookup(pair.Second.ID)
		if err != nil {
			return nil, err
		}
		resolved[i] = Pair{First: first, Second: second}
	}
	return resolved, nil
}

// castPerfect prefers the higher true impact; ties go to the second project.
func (b *PairwiseBadgeholder) castPerfect(view []Pair) {
	for _, pair := range view {
		b.vote(pair, pair.First.TrueImpact > pair.Second.TrueImpact)
	}
}

func (b *PairwiseBadgeholder) castRandom(view []Pair) {
	for _, pair := range view {
		b.vote(pair, b.rng.Float64() < 0.5)
	}
}

func (b *PairwiseBadgeholder) castSkewed(view []Pair) {
	numToCast := int(math.Floor(float64(len(view)) * (1 - b.laziness)))
	if numToCast <= 0 {
		return
	}

	selected := view
	if b.laziness > 0 {
		selected = b.selectBallot(view, numToCast)
	}

	for _, pair := range selected {
		if preferFirst, ok := b.coiPreference(pair); ok {
			b.vote(pair, preferFirst)
			continue
		}
		b.vote(pair, b.judge(pair))
	}
}

// selectBallot keeps every conflicted pair and fills the rest of the quota
// with a random subset of the remaining pairs. Selected pairs keep their
// order in view.
func (b *PairwiseBadgeholder) selectBallot(view []Pair, numToCast int) []Pair {
	keep := make([]bool, len(view))
	conflicted := 0
	others := make([]int, 0, len(view))
	for i, pair := range view {
		if _, ok := b.coiPreference(pair); ok {
			keep[i] = true
			conflicted++
			continue
		}
		others = append(others, i)
	}

	quota := max(0, numToCast-conflicted)
	for _, j := range rng.SampleIndices(b.rng, len(others), quota) {
		keep[others[j]] = true
	}

	selected := make([]Pair, 0, conflicted+quota)
	for i, pair := range view {
		if keep[i] {
			selected = append(selected, pair)
		}
	}
	return selected
}

// coiPreference reports whether a conflict of interest decides the pair, and
// if so which side wins. The first project is checked first.
func (b *PairwiseBadgeholder) coiPreference(pair Pair) (preferFirst bool, ok bool) {
	if !b.engagingInCOI {
		return false, false
	}
	if b.coi[pair.First.ID] {
		return true, true
	}
	if b.coi[pair.Second.ID] {
		return false, true
	}
	return false, false
}

// judge applies the expertise model: one draw decides whether the vote
// favours the higher-impact project (ties count the second as higher).
func (b *PairwiseBadgeholder) judge(pair Pair) bool {
	delta := math.Abs(pair.First.TrueImpact - pair.Second.TrueImpact)
	correct := rng.Bernoulli(b.rng, CorrectnessProbability(b.expertise, delta))
	firstIsHigher := pair.First.TrueImpact > pair.Second.TrueImpact
	return correct == firstIsHigher
}

func (b *PairwiseBadgeholder) vote(pair Pair, preferFirst bool) {
	v := models.NewComparisonVote(b.id, pair.First.ID, pair.Second.ID, preferFirst)
	b.record(v, pair.First, pair.Second)
}

// CorrectnessProbability is the chance that a badgeholder with the given
// expertise prefers the higher-impact project of a pair whose impacts differ
// by delta.
func CorrectnessProbability(expertise, delta float64) float64 {
	switch {
	case expertise <= 0:
		return 0.5
	case expertise >= 1:
		return 1
	}
	p := 0.5 + delta*0.5/(1-expertise)
	return math.Min(1, math.Max(0, p))
}

// AllPairs returns every unordered pair of projects, in population order.
func AllPairs(projects []*models.Project) []Pair {
	n := len(projects)
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{First: projects[i], Second: projects[j]})
		}
	}
	return pairs
}

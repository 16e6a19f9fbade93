// Package agents implements the simulated voters (badgeholders) of a funding
// round and the populations that coordinate them.
//
// Two kinds of badgeholder exist. A PairwiseBadgeholder judges pairs of
// projects and emits comparison votes; a QuorumBadgeholder ranks every project
// and spreads a fixed budget over the top of its ranking, emitting allocation
// votes. Both are driven by expertise, laziness and conflict-of-interest
// parameters, and both draw every random decision from the generator handed to
// them by their population.
package agents

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/votesim/internal/models"
)

var (
	// ErrNotReady is returned when a badgeholder is asked to vote before it
	// has received the project population and the random generator.
	ErrNotReady = errors.New("badgeholder not ready")

	// ErrUnsupportedStyle is returned for an unrecognised voting style.
	ErrUnsupportedStyle = errors.New("unsupported voting style")

	// ErrUnsupportedConfiguration is returned for parameter combinations the
	// voting models cannot handle, such as more than one conflict-of-interest
	// project on a quorum badgeholder.
	ErrUnsupportedConfiguration = errors.New("unsupported badgeholder configuration")

	// ErrUnknownProject is returned when a vote would reference a project
	// outside the badgeholder's assigned population.
	ErrUnknownProject = errors.New("project not in assigned population")
)

// ProjectSource is the read-only view of the project population a
// badgeholder votes on.
type ProjectSource interface {
	Projects() []*models.Project
	Get(id string) (*models.Project, bool)
	Len() int
}

// Badgeholder is a simulated voter.
type Badgeholder interface {
	ID() string

	// SendApplications hands the badgeholder the projects it may vote on.
	SendApplications(projects ProjectSource)

	// SetRandomGenerator hands the badgeholder the round's shared generator.
	SetRandomGenerator(r *rand.Rand)

	// Votes returns every vote cast since the last Reset.
	Votes() []models.Vote

	// Reset clears per-round state.
	Reset()
}

// base holds the state common to every badgeholder kind.
type base struct {
	id       string
	votes    []models.Vote
	projects ProjectSource
	rng      *rand.Rand
}

func (b *base) ID() string { return b.id }

func (b *base) SendApplications(projects ProjectSource) { b.projects = projects }

func (b *base) SetRandomGenerator(r *rand.Rand) { b.rng = r }

func (b *base) Votes() []models.Vote { return b.votes }

func (b *base) ready() error {
	if b.projects == nil {
		return fmt.Errorf("%w: projects have not been sent to badgeholder %s", ErrNotReady, b.id)
	}
	if b.rng == nil {
		return fmt.Errorf("%w: random generator has not been set on badgeholder %s", ErrNotReady, b.id)
	}
	return nil
}

// record keeps v on the badgeholder and attaches it to every target project.
func (b *base) record(v models.Vote, targets ...*models.Project) {
	b.votes = append(b.votes, v)
	for _, p := range targets {
		p.AddVote(v)
	}
}

// lookup resolves id against the assigned population.
func (b *base) lookup(id string) (*models.Project, error) {
	p, ok := b.projects.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: badgeholder %s cannot see project %s", ErrUnknownProject, b.id, id)
	}
	return p, nil
}

// Package store persists experiment results.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/votesim/internal/simulation"
)

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored header of one experiment.
type Run struct {
	ID            uuid.UUID          `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	Name          string             `json:"name,omitempty"`
	Design        string             `json:"design"`
	ScoringMethod string             `json:"scoring_method"`
	Seed          uint64             `json:"seed"`
	Runs          int                `json:"runs"`
	Mean          simulation.Summary `json:"mean"`
}

// Round is one stored round of an experiment.
type Round struct {
	Index     int                `json:"index"`
	Seed      uint64             `json:"seed"`
	VotesCast int                `json:"votes_cast"`
	Duration  time.Duration      `json:"duration"`
	Summary   simulation.Summary `json:"summary"`
}

// RunDetail is a run with its rounds, project averages and the
// configuration it was run with.
type RunDetail struct {
	Run
	ConfigYAML string                      `json:"config_yaml,omitempty"`
	Rounds     []Round                     `json:"rounds"`
	Projects   []simulation.ProjectAverage `json:"projects"`
}

// ResultStore defines how experiment results are saved and read back.
type ResultStore interface {
	// SaveExperiment stores a finished experiment and returns its new ID.
	// cfgYAML is the configuration document the experiment was run with.
	SaveExperiment(ctx context.Context, cfgYAML []byte, result simulation.ExperimentResult) (uuid.UUID, error)

	// ListRuns returns stored runs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// GetRun returns one run in full. It returns ErrRunNotFound when the
	// ID is unknown.
	GetRun(ctx context.Context, id uuid.UUID) (*RunDetail, error)

	Close() error
}

// Package metrics records simulation telemetry in Prometheus collectors.
//
// Collectors live on a private registry so several recorders can coexist in
// one process. A nil *Recorder is safe to use; every method is a no-op.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/nvandessel/votesim/internal/models"
)

const (
	Namespace = "votesim"

	VotingSubsystem = "voting"
	RoundSubsystem  = "round"
)

// Recorder holds the simulation collectors.
type Recorder struct {
	registry *prometheus.Registry

	votesCast       *prometheus.CounterVec
	abstentions     prometheus.Counter
	roundsCompleted *prometheus.CounterVec
	fundsAllocated  prometheus.Counter
	roundDuration   prometheus.Histogram
}

// New creates a recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "votes_cast_total",
			Help:      "Votes cast by badgeholders, by vote kind.",
		}, []string{"kind"}),
		abstentions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "abstentions_total",
			Help:      "Allocation votes recorded as abstentions.",
		}),
		roundsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RoundSubsystem,
			Name:      "completed_total",
			Help:      "Voting rounds run to completion, by voting design.",
		}, []string{"design"}),
		fundsAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RoundSubsystem,
			Name:      "funds_allocated_total",
			Help:      "Sum of payouts across completed rounds.",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: RoundSubsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of a voting round.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	r.registry.MustRegister(
		r.votesCast,
		r.abstentions,
		r.roundsCompleted,
		r.fundsAllocated,
		r.roundDuration,
	)
	return r
}

// Registry exposes the recorder's registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveVotes counts votes by kind and counts abstentions.
func (r *Recorder) ObserveVotes(votes []models.Vote) {
	if r == nil {
		return
	}
	for _, v := range votes {
		r.votesCast.WithLabelValues(string(v.Kind())).Inc()
		if av, ok := v.(models.AllocationVote); ok && av.Abstained() {
			r.abstentions.Inc()
		}
	}
}

// ObserveRound records a completed round.
func (r *Recorder) ObserveRound(design string, allocated float64, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.roundsCompleted.WithLabelValues(design).Inc()
	if allocated > 0 {
		r.fundsAllocated.Add(allocated)
	}
	r.roundDuration.Observe(elapsed.Seconds())
}

// WriteText writes every collector in the Prometheus text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

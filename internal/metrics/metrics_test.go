package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nvandessel/votesim/internal/models"
)

func TestRecorder_ObserveVotes(t *testing.T) {
	r := New()
	r.ObserveVotes([]models.Vote{
		models.NewComparisonVote("v1", "a", "b", true),
		models.NewAllocationVote("v1", "a", 10),
		models.NewAbstention("v1", "b"),
		models.NewAbstention("v2", "b"),
	})

	if got := testutil.ToFloat64(r.votesCast.WithLabelValues(string(models.VoteKindComparison))); got != 1 {
		t.Errorf("comparison votes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.votesCast.WithLabelValues(string(models.VoteKindAllocation))); got != 3 {
		t.Errorf("allocation votes = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.abstentions); got != 2 {
		t.Errorf("abstentions = %v, want 2", got)
	}
}

func TestRecorder_ObserveRound(t *testing.T) {
	r := New()
	r.ObserveRound("quorum", 1500, 20*time.Millisecond)
	r.ObserveRound("quorum", 500, 10*time.Millisecond)
	r.ObserveRound("pairwise", 0, time.Millisecond)

	if got := testutil.ToFloat64(r.roundsCompleted.WithLabelValues("quorum")); got != 2 {
		t.Errorf("quorum rounds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.roundsCompleted.WithLabelValues("pairwise")); got != 1 {
		t.Errorf("pairwise rounds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.fundsAllocated); got != 2000 {
		t.Errorf("funds allocated = %v, want 2000", got)
	}
	if got := testutil.CollectAndCount(r.roundDuration); got != 1 {
		t.Errorf("duration collectors = %d, want 1", got)
	}
}

func TestRecorder_WriteText(t *testing.T) {
	r := New()
	r.ObserveVotes([]models.Vote{models.NewAbstention("v1", "a")})
	r.ObserveRound("quorum", 42, time.Millisecond)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"votesim_voting_abstentions_total 1",
		`votesim_voting_votes_cast_total{kind="allocation"} 1`,
		`votesim_round_completed_total{design="quorum"} 1`,
		"votesim_round_funds_allocated_total 42",
		"votesim_round_duration_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.ObserveVotes([]models.Vote{models.NewAbstention("v", "p")})
	r.ObserveRound("quorum", 1, time.Second)
	if err := r.WriteText(&bytes.Buffer{}); err != nil {
		t.Errorf("WriteText() on nil = %v", err)
	}
	if r.Registry() != nil {
		t.Error("Registry() on nil should be nil")
	}
}

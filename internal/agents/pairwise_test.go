package agents

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/nvandessel/votesim/internal/models"
	"github.com/nvandessel/votesim/internal/rng"
)

func TestPairwise_NotReady(t *testing.T) {
	pop := newPopulation(0.8, 0.2)
	view := AllPairs(pop.Projects())

	b := NewPairwiseBadgeholder(PairwiseConfig{ID: "bh", Style: StylePerfect})
	if err := b.CastVotes(view); !errors.Is(err, ErrNotReady) {
		t.Errorf("CastVotes() without projects error = %v, want ErrNotReady", err)
	}

	b.SendApplications(pop)
	if err := b.CastVotes(view); !errors.Is(err, ErrNotReady) {
		t.Errorf("CastVotes() without generator error = %v, want ErrNotReady", err)
	}

	b.SetRandomGenerator(rng.New(1))
	if err := b.CastVotes(view); err != nil {
		t.Errorf("CastVotes() when ready error = %v", err)
	}
}

func TestPairwise_UnsupportedStyle(t *testing.T) {
	pop := newPopulation(0.8, 0.2)
	b := readyPairwise(t, PairwiseConfig{Style: VotingStyle(42)}, pop, 1)

	err := b.CastVotes(AllPairs(pop.Projects()))
	if !errors.Is(err, ErrUnsupportedStyle) {
		t.Errorf("CastVotes() error = %v, want ErrUnsupportedStyle", err)
	}
}

func TestPairwise_UnknownProject(t *testing.T) {
	pop := newPopulation(0.8, 0.2)
	stranger := models.NewProject("stranger", 0.5, "")
	b := readyPairwise(t, PairwiseConfig{Style: StylePerfect}, pop, 1)

	view := []Pair{{First: pop.Projects()[0], Second: stranger}}
	if err := b.CastVotes(view); !errors.Is(err, ErrUnknownProject) {
		t.Errorf("CastVotes() error = %v, want ErrUnknownProject", err)
	}
	if len(b.Votes()) != 0 {
		t.Error("no votes should be recorded when the view is inconsistent")
	}
}

func TestPairwise_PerfectTwoProjects(t *testing.T) {
	for seed := uint64(0); seed < 5; seed++ {
		pop := newPopulation(0.8, 0.2)
		b := readyPairwise(t, PairwiseConfig{Style: StylePerfect}, pop, seed)

		p0, p1 := pop.Projects()[0], pop.Projects()[1]
		view := []Pair{{First: p0, Second: p1}, {First: p1, Second: p0}}
		if err := b.CastVotes(view); err != nil {
			t.Fatalf("CastVotes() error = %v", err)
		}

		for _, v := range comparisonVotes(t, b.Votes()) {
			if v.Preferred() != "p0" {
				t.Errorf("seed %d: vote %+v does not favour p0", seed, v)
			}
		}
	}
}

func TestPairwise_PerfectTieGoesToSecond(t *testing.T) {
	pop := newPopulation(0.5, 0.5)
	b := readyPairwise(t, PairwiseConfig{Style: StylePerfect}, pop, 1)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	v := comparisonVotes(t, b.Votes())[0]
	if v.Preferred() != "p1" {
		t.Errorf("tie preferred %q, want p1", v.Preferred())
	}
}

func TestPairwise_PerfectAlwaysPrefersHigherImpact(t *testing.T) {
	r := rng.New(99)
	impacts := make([]float64, 12)
	for i := range impacts {
		impacts[i] = r.Float64()
	}
	pop := newPopulation(impacts...)
	b := readyPairwise(t, PairwiseConfig{Style: StylePerfect}, pop, 3)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	for _, v := range comparisonVotes(t, b.Votes()) {
		first, _ := pop.Get(v.First)
		second, _ := pop.Get(v.Second)
		want := v.Second
		if first.TrueImpact > second.TrueImpact {
			want = v.First
		}
		if v.Preferred() != want {
			t.Errorf("pair (%s,%s) preferred %s, want %s", v.First, v.Second, v.Preferred(), want)
		}
	}
}

func TestPairwise_ComparisonValuesInvariant(t *testing.T) {
	styles := []VotingStyle{StyleRandom, StylePerfect, StyleSkewedTowardsImpact}
	for _, style := range styles {
		t.Run(style.String(), func(t *testing.T) {
			pop := newPopulation(0.9, 0.7, 0.4, 0.4, 0.1)
			b := readyPairwise(t, PairwiseConfig{
				Style:         style,
				Expertise:     0.3,
				COI:           []string{"p3"},
				EngagingInCOI: true,
			}, pop, 11)

			if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
				t.Fatalf("CastVotes() error = %v", err)
			}
			for _, v := range comparisonVotes(t, b.Votes()) {
				ok := (v.FirstValue == 1 && v.SecondValue == 0) || (v.FirstValue == 0 && v.SecondValue == 1)
				if !ok {
					t.Errorf("invalid comparison values (%d,%d)", v.FirstValue, v.SecondValue)
				}
			}
		})
	}
}

func TestPairwise_VotesAttachToBothProjects(t *testing.T) {
	pop := newPopulation(0.9, 0.5, 0.1)
	b := readyPairwise(t, PairwiseConfig{Style: StyleRandom}, pop, 5)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	if len(b.Votes()) != 3 {
		t.Fatalf("badgeholder has %d votes, want 3", len(b.Votes()))
	}
	for _, p := range pop.Projects() {
		if p.NumVotes() != 2 {
			t.Errorf("project %s has %d votes, want 2", p.ID, p.NumVotes())
		}
	}
}

func TestPairwise_RandomIsBalanced(t *testing.T) {
	pop := newPopulation(0.9, 0.1)
	p0, p1 := pop.Projects()[0], pop.Projects()[1]
	view := make([]Pair, 1000)
	for i := range view {
		view[i] = Pair{First: p0, Second: p1}
	}

	b := readyPairwise(t, PairwiseConfig{Style: StyleRandom}, pop, 17)
	if err := b.CastVotes(view); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}

	firsts := 0
	for _, v := range comparisonVotes(t, b.Votes()) {
		firsts += v.FirstValue
	}
	if firsts < 400 || firsts > 600 {
		t.Errorf("random style preferred first %d/1000 times", firsts)
	}
}

func TestPairwise_SkewedLaziness(t *testing.T) {
	tests := []struct {
		name      string
		laziness  float64
		numPairs  int
		wantVotes int
	}{
		{"not lazy", 0, 10, 10},
		{"half lazy", 0.5, 10, 5},
		{"mostly lazy", 0.75, 10, 2},
		{"fully lazy", 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := newPopulation(0.9, 0.8, 0.6, 0.3, 0.1) // 10 pairs
			b := readyPairwise(t, PairwiseConfig{
				Style:     StyleSkewedTowardsImpact,
				Expertise: 0.5,
				Laziness:  tt.laziness,
			}, pop, 23)

			view := AllPairs(pop.Projects())
			if len(view) != tt.numPairs {
				t.Fatalf("view has %d pairs, want %d", len(view), tt.numPairs)
			}
			if err := b.CastVotes(view); err != nil {
				t.Fatalf("CastVotes() error = %v", err)
			}
			if got := len(b.Votes()); got != tt.wantVotes {
				t.Errorf("cast %d votes, want %d", got, tt.wantVotes)
			}
		})
	}
}

func TestPairwise_SkewedFullExpertiseIsCorrect(t *testing.T) {
	pop := newPopulation(0.2, 0.9, 0.5, 0.7)
	b := readyPairwise(t, PairwiseConfig{Style: StyleSkewedTowardsImpact, Expertise: 1}, pop, 8)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	for _, v := range comparisonVotes(t, b.Votes()) {
		first, _ := pop.Get(v.First)
		second, _ := pop.Get(v.Second)
		if first.TrueImpact > second.TrueImpact && v.Preferred() != v.First {
			t.Errorf("expert voted for lower impact in (%s,%s)", v.First, v.Second)
		}
		if second.TrueImpact > first.TrueImpact && v.Preferred() != v.Second {
			t.Errorf("expert voted for lower impact in (%s,%s)", v.First, v.Second)
		}
	}
}

func TestPairwise_SkewedCOIOverride(t *testing.T) {
	pop := newPopulation(0.9, 0.8, 0.6, 0.3, 0.1)
	b := readyPairwise(t, PairwiseConfig{
		Style:         StyleSkewedTowardsImpact,
		Expertise:     1,
		Laziness:      0.8, // quota of 1 pair; every COI pair is still judged
		COI:           []string{"p4"},
		EngagingInCOI: true,
	}, pop, 4)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}

	coiVotes := 0
	for _, v := range comparisonVotes(t, b.Votes()) {
		if v.First == "p4" || v.Second == "p4" {
			coiVotes++
			if v.Preferred() != "p4" {
				t.Errorf("conflicted vote (%s,%s) did not favour p4", v.First, v.Second)
			}
		}
	}
	if coiVotes != 4 {
		t.Errorf("judged %d conflicted pairs, want all 4", coiVotes)
	}
	if len(b.Votes()) != 4 {
		t.Errorf("cast %d votes, want 4 (quota already used by conflicted pairs)", len(b.Votes()))
	}
}

func TestPairwise_SkewedCOIIgnoredWhenNotEngaging(t *testing.T) {
	pop := newPopulation(0.9, 0.1)
	b := readyPairwise(t, PairwiseConfig{
		Style:     StyleSkewedTowardsImpact,
		Expertise: 1,
		COI:       []string{"p1"},
	}, pop, 4)

	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	if v := comparisonVotes(t, b.Votes())[0]; v.Preferred() != "p0" {
		t.Errorf("preferred %s, want p0 (conflict not acted on)", v.Preferred())
	}
}

func TestPairwise_Reproducible(t *testing.T) {
	run := func() []models.Vote {
		pop := newPopulation(0.9, 0.8, 0.6, 0.3, 0.1, 0.05)
		b := readyPairwise(t, PairwiseConfig{
			Style:     StyleSkewedTowardsImpact,
			Expertise: 0.4,
			Laziness:  0.3,
		}, pop, 2024)
		if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
			t.Fatalf("CastVotes() error = %v", err)
		}
		return b.Votes()
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different votes")
	}
}

func TestPairwise_Reset(t *testing.T) {
	pop := newPopulation(0.9, 0.1)
	b := readyPairwise(t, PairwiseConfig{Style: StylePerfect}, pop, 1)
	if err := b.CastVotes(AllPairs(pop.Projects())); err != nil {
		t.Fatalf("CastVotes() error = %v", err)
	}
	b.Reset()
	if len(b.Votes()) != 0 {
		t.Errorf("Votes() after Reset = %d", len(b.Votes()))
	}
}

func TestCorrectnessProbability(t *testing.T) {
	tests := []struct {
		name      string
		expertise float64
		delta     float64
		want      float64
	}{
		{"no expertise", 0, 0.9, 0.5},
		{"full expertise", 1, 0, 1},
		{"half expertise small delta", 0.5, 0.1, 0.6},
		{"clamped", 0.5, 0.8, 1},
		{"equal impact", 0.7, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectnessProbability(tt.expertise, tt.delta)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CorrectnessProbability(%v, %v) = %v, want %v", tt.expertise, tt.delta, got, tt.want)
			}
		})
	}
}

func TestAllPairs(t *testing.T) {
	pop := newPopulation(1, 2, 3, 4)
	pairs := AllPairs(pop.Projects())
	if len(pairs) != 6 {
		t.Fatalf("AllPairs() returned %d pairs, want 6", len(pairs))
	}
	if pairs[0].First.ID != "p0" || pairs[0].Second.ID != "p1" {
		t.Errorf("first pair = (%s,%s), want (p0,p1)", pairs[0].First.ID, pairs[0].Second.ID)
	}
	if len(AllPairs(nil)) != 0 {
		t.Error("AllPairs(nil) should be empty")
	}
}

func TestParseVotingStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    VotingStyle
		wantErr bool
	}{
		{"random", StyleRandom, false},
		{"PERFECT", StylePerfect, false},
		{"skewed_towards_impact", StyleSkewedTowardsImpact, false},
		{" perfect ", StylePerfect, false},
		{"lazy", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVotingStyle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVotingStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedStyle) {
				t.Errorf("error %v is not ErrUnsupportedStyle", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVotingStyle(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

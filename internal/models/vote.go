package models

import "encoding/json"

// VoteKind distinguishes the two kinds of ballots a badgeholder can produce.
type VoteKind string

const (
	VoteKindComparison VoteKind = "comparison" // Pairwise judgement
	VoteKindAllocation VoteKind = "allocation" // Budget allocation
)

// Vote is a single immutable judgement cast by a badgeholder.
//
// The set of implementations is closed: only ComparisonVote and
// AllocationVote satisfy it. Votes refer to badgeholders and projects by ID;
// the same value is shared by the casting badgeholder and every project it
// targets.
type Vote interface {
	// Kind reports which variant this vote is.
	Kind() VoteKind

	// VoterID is the ID of the badgeholder that cast the vote.
	VoterID() string

	// ProjectIDs lists the projects the vote refers to, in ballot order.
	ProjectIDs() []string

	// AmountFor returns the value this vote contributes to the tally of the
	// given project. ok is false when the vote contributes nothing
	// (abstention, or the project is not referenced).
	AmountFor(projectID string) (amount float64, ok bool)

	sealed()
}

// ComparisonVote records a pairwise preference between two projects.
// Exactly one of FirstValue and SecondValue is 1; the other is 0.
type ComparisonVote struct {
	Voter       string `json:"voter" yaml:"voter"`
	First       string `json:"first" yaml:"first"`
	Second      string `json:"second" yaml:"second"`
	FirstValue  int    `json:"first_value" yaml:"first_value"`
	SecondValue int    `json:"second_value" yaml:"second_value"`
}

// NewComparisonVote builds a comparison vote preferring first when
// preferFirst is true and second otherwise. Ties cannot be expressed.
func NewComparisonVote(voter, first, second string, preferFirst bool) ComparisonVote {
	v := ComparisonVote{Voter: voter, First: first, Second: second}
	if preferFirst {
		v.FirstValue = 1
	} else {
		v.SecondValue = 1
	}
	return v
}

func (v ComparisonVote) Kind() VoteKind { return VoteKindComparison }
func (v ComparisonVote) VoterID() string { return v.Voter }
func (v ComparisonVote) ProjectIDs() []string { return []string{v.First, v.Second} }
func (ComparisonVote) sealed() {}

// Preferred returns the ID of the project that won the comparison.
func (v ComparisonVote) Preferred() string {
	if v.FirstValue == 1 {
		return v.First
	}
	return v.Second
}

// AmountFor returns the judgement value (1 or 0) given to projectID.
func (v ComparisonVote) AmountFor(projectID string) (float64, bool) {
	switch projectID {
	case v.First:
		return float64(v.FirstValue), true
	case v.Second:
		return float64(v.SecondValue), true
	default:
		return 0, false
	}
}

// AllocationVote records the amount a badgeholder offers a single project,
// or an abstention.
type AllocationVote struct {
	Voter     string  `json:"voter" yaml:"voter"`
	Project   string  `json:"project" yaml:"project"`
	amount    float64
	abstained bool
}

// NewAllocationVote builds a vote offering amount to project.
func NewAllocationVote(voter, project string, amount float64) AllocationVote {
	return AllocationVote{Voter: voter, Project: project, amount: amount}
}

// NewAbstention builds a vote recording that voter offered project nothing.
func NewAbstention(voter, project string) AllocationVote {
	return AllocationVote{Voter: voter, Project: project, abstained: true}
}

func (v AllocationVote) Kind() VoteKind { return VoteKindAllocation }
func (v AllocationVote) VoterID() string { return v.Voter }
func (v AllocationVote) ProjectIDs() []string { return []string{v.Project} }
func (AllocationVote) sealed() {}

// Abstained reports whether the vote carries no amount.
func (v AllocationVote) Abstained() bool { return v.abstained }

// Amount returns the offered amount; ok is false for abstentions.
func (v AllocationVote) Amount() (amount float64, ok bool) {
	if v.abstained {
		return 0, false
	}
	return v.amount, true
}

// AmountFor returns the offered amount when projectID is the target and the
// vote is not an abstention.
func (v AllocationVote) AmountFor(projectID string) (float64, bool) {
	if projectID != v.Project {
		return 0, false
	}
	return v.Amount()
}

// MarshalJSON encodes abstentions with a null amount.
func (v AllocationVote) MarshalJSON() ([]byte, error) {
	var amount *float64
	if a, ok := v.Amount(); ok {
		amount = &a
	}
	return json.Marshal(struct {
		Voter   string   `json:"voter"`
		Project string   `json:"project"`
		Amount  *float64 `json:"amount"`
	}{v.Voter, v.Project, amount})
}

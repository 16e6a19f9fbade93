// Package models defines the projects and votes of a funding round.
package models

// Project is a funding candidate in a voting round.
//
// TrueImpact is the hidden ground-truth quality of the project. Voting logic
// never reads it directly; it only shapes badgeholder behaviour through their
// expertise models.
type Project struct {
	// Identity
	ID      string `json:"id" yaml:"id"`
	OwnerID string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"` // Badgeholder barred from funding this project

	TrueImpact float64 `json:"true_impact" yaml:"true_impact"`

	// Round state, written by badgeholders and the funding design
	votes       []Vote
	Score       *float64 `json:"score,omitempty" yaml:"score,omitempty"` // nil until scored
	TokenAmount float64  `json:"token_amount" yaml:"token_amount"`
}

// ProjectResult is a flat snapshot of a project after a round.
type ProjectResult struct {
	ProjectID   string   `json:"project_id"`
	OwnerID     string   `json:"owner_id,omitempty"`
	TrueImpact  float64  `json:"true_impact"`
	NumVotes    int      `json:"num_votes"`
	Score       *float64 `json:"score,omitempty"`
	TokenAmount float64  `json:"token_amount"`
}

// NewProject creates a project with no votes. ownerID may be empty.
func NewProject(id string, trueImpact float64, ownerID string) *Project {
	return &Project{
		ID:         id,
		OwnerID:    ownerID,
		TrueImpact: trueImpact,
		votes:      make([]Vote, 0),
	}
}

// AddVote appends a vote to the project's tally.
func (p *Project) AddVote(v Vote) {
	p.votes = append(p.votes, v)
}

// Votes returns the attached votes in the order they were cast.
// The returned slice must not be modified.
func (p *Project) Votes() []Vote {
	return p.votes
}

// NumVotes returns the number of attached votes, abstentions included.
func (p *Project) NumVotes() int {
	return len(p.votes)
}

// Amounts collects the value every non-abstaining vote contributes to this
// project, in vote order.
func (p *Project) Amounts() []float64 {
	amounts := make([]float64, 0, len(p.votes))
	for _, v := range p.votes {
		if a, ok := v.AmountFor(p.ID); ok {
			amounts = append(amounts, a)
		}
	}
	return amounts
}

// SetScore records the score assigned by a funding design.
func (p *Project) SetScore(score float64) {
	p.Score = &score
}

// Reset clears round state while keeping identity and true impact.
func (p *Project) Reset() {
	p.votes = make([]Vote, 0)
	p.Score = nil
	p.TokenAmount = 0
}

// Results returns a snapshot of the project's round outcome.
func (p *Project) Results() ProjectResult {
	r := ProjectResult{
		ProjectID:   p.ID,
		OwnerID:     p.OwnerID,
		TrueImpact:  p.TrueImpact,
		NumVotes:    len(p.votes),
		TokenAmount: p.TokenAmount,
	}
	if p.Score != nil {
		s := *p.Score
		r.Score = &s
	}
	return r
}

package models

// ProjectPopulation is an ordered collection of projects with lookup by ID.
type ProjectPopulation struct {
	projects []*Project
	index    map[string]int
}

// NewProjectPopulation creates a population holding projects in order.
func NewProjectPopulation(projects ...*Project) *ProjectPopulation {
	pop := &ProjectPopulation{
		projects: make([]*Project, 0, len(projects)),
		index:    make(map[string]int, len(projects)),
	}
	pop.Add(projects...)
	return pop
}

// Add appends projects. A project whose ID is already present replaces the
// earlier entry in place.
func (pp *ProjectPopulation) Add(projects ...*Project) {
	if pp.index == nil {
		pp.index = make(map[string]int, len(projects))
	}
	for _, p := range projects {
		if i, ok := pp.index[p.ID]; ok {
			pp.projects[i] = p
			continue
		}
		pp.index[p.ID] = len(pp.projects)
		pp.projects = append(pp.projects, p)
	}
}

// Projects returns all projects in insertion order.
func (pp *ProjectPopulation) Projects() []*Project {
	return pp.projects
}

// Get returns the project with the given ID.
func (pp *ProjectPopulation) Get(id string) (*Project, bool) {
	i, ok := pp.index[id]
	if !ok {
		return nil, false
	}
	return pp.projects[i], true
}

// Len returns the number of projects.
func (pp *ProjectPopulation) Len() int {
	return len(pp.projects)
}

// Reset clears the round state of every project.
func (pp *ProjectPopulation) Reset() {
	for _, p := range pp.projects {
		p.Reset()
	}
}

// Results snapshots every project in order.
func (pp *ProjectPopulation) Results() []ProjectResult {
	results := make([]ProjectResult, len(pp.projects))
	for i, p := range pp.projects {
		results[i] = p.Results()
	}
	return results
}

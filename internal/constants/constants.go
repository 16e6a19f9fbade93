// Package constants provides named constants used throughout the votesim codebase.
// Defaults describe a round sized like a large retroactive funding round.
package constants

// Round defaults
const (
	// DefaultSeed seeds the first round of an experiment.
	DefaultSeed = 42

	// DefaultRuns is the number of rounds an experiment averages over.
	DefaultRuns = 10

	// DefaultProjectCount is the number of generated projects.
	DefaultProjectCount = 600

	// DefaultVoterCount is the number of generated badgeholders.
	DefaultVoterCount = 150
)

// Badgeholder behaviour defaults
const (
	// DefaultLaziness leaves 60% of projects off each ballot.
	DefaultLaziness = 0.6

	// DefaultExpertise is how closely personal rankings track true impact.
	DefaultExpertise = 0.7

	// DefaultMinVote is the smallest amount a badgeholder will allocate.
	// Smaller slots on the budget curve become abstentions.
	DefaultMinVote = 1_500

	// DefaultMaxVote caps a single allocation.
	DefaultMaxVote = 5_000_000
)

// Funding defaults
const (
	// DefaultMaxFunding is the size of the funding pool, and each
	// badgeholder's budget.
	DefaultMaxFunding = 30_000_000

	// DefaultQuorum is the number of non-abstained votes a project needs.
	DefaultQuorum = 17

	// DefaultMinAmount zeroes project scores below it.
	DefaultMinAmount = 1_500
)

// Storage
const (
	// AppDir is the per-user directory for config, results and traces.
	AppDir = ".votesim"

	// ConfigFile is the config file name inside AppDir.
	ConfigFile = "config.yaml"

	// ResultsDB is the SQLite results database name.
	ResultsDB = "results.db"
)

// Package config provides unified configuration loading for votesim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/constants"
	"github.com/nvandessel/votesim/internal/funding"
	"github.com/nvandessel/votesim/internal/logging"
	"github.com/nvandessel/votesim/internal/simulation"
)

// VotesimConfig contains every experiment and tooling setting.
type VotesimConfig struct {
	// Round controls seeding and repetition.
	Round RoundConfig `json:"round" yaml:"round"`

	// Projects controls project generation.
	Projects ProjectsConfig `json:"projects" yaml:"projects"`

	// QuorumVoters configures the electorate when round.design is "quorum".
	QuorumVoters QuorumVotersConfig `json:"quorum_voters" yaml:"quorum_voters"`

	// PairwiseVoters configures the electorate when round.design is "pairwise".
	PairwiseVoters PairwiseVotersConfig `json:"pairwise_voters" yaml:"pairwise_voters"`

	// Funding configures scoring and the funding pool.
	Funding FundingConfig `json:"funding" yaml:"funding"`

	// Logging contains settings for operational logging and round traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store configures where experiment results are kept.
	Store StoreConfig `json:"store" yaml:"store"`
}

// RoundConfig controls seeding and repetition.
type RoundConfig struct {
	Name string `json:"name" yaml:"name"`

	// Seed seeds project generation and the first round. Round i uses Seed+i.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Runs is the number of rounds averaged per experiment.
	Runs int `json:"runs" yaml:"runs"`

	// Design is "quorum" (default) or "pairwise".
	Design string `json:"design" yaml:"design"`
}

// ProjectsConfig controls project generation.
type ProjectsConfig struct {
	Count int `json:"count" yaml:"count"`

	// COIFactor is the probability that a project is owned by a badgeholder.
	COIFactor float64 `json:"coi_factor" yaml:"coi_factor"`
}

// QuorumVotersConfig configures quorum badgeholders.
type QuorumVotersConfig struct {
	Count        int     `json:"count" yaml:"count"`
	InitialFunds float64 `json:"initial_funds" yaml:"initial_funds"`
	MinVote      float64 `json:"min_vote" yaml:"min_vote"`
	MaxVote      float64 `json:"max_vote" yaml:"max_vote"`
	Laziness     float64 `json:"laziness" yaml:"laziness"`
	Expertise    float64 `json:"expertise" yaml:"expertise"`

	// COIFactor is the chance a voter favours a project it does not own, and
	// how far it pulls that project up its ranking.
	COIFactor float64 `json:"coi_factor" yaml:"coi_factor"`
}

// PairwiseVotersConfig configures pairwise badgeholders.
type PairwiseVotersConfig struct {
	Count int `json:"count" yaml:"count"`

	// Style is "skewed_towards_impact", "random" or "perfect".
	Style     string  `json:"style" yaml:"style"`
	Expertise float64 `json:"expertise" yaml:"expertise"`
	Laziness  float64 `json:"laziness" yaml:"laziness"`

	EngagingInCOI bool `json:"engaging_in_coi" yaml:"engaging_in_coi"`
}

// FundingConfig configures scoring and the funding pool.
type FundingConfig struct {
	// ScoringMethod is one of sum, mean, median, quadratic, outliers.
	ScoringMethod string  `json:"scoring_method" yaml:"scoring_method"`
	Quorum        int     `json:"quorum" yaml:"quorum"`
	MinAmount     float64 `json:"min_amount" yaml:"min_amount"`
	MaxFunding    float64 `json:"max_funding" yaml:"max_funding"`
	Normalize     bool    `json:"normalize" yaml:"normalize"`
}

// LoggingConfig configures votesim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables round tracing to <trace_dir>/trace.jsonl.
	// "trace" additionally records every vote.
	Level string `json:"level" yaml:"level"`

	// TraceDir is where trace.jsonl is written. Empty means the app dir.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// StoreConfig configures result persistence.
type StoreConfig struct {
	// Path is the directory holding results.db. Empty means ~/.votesim.
	// Supports ${VAR} expansion and a leading ~.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a VotesimConfig with sensible defaults.
func Default() *VotesimConfig {
	return &VotesimConfig{
		Round: RoundConfig{
			Name:   "default",
			Seed:   constants.DefaultSeed,
			Runs:   constants.DefaultRuns,
			Design: string(simulation.DesignQuorum),
		},
		Projects: ProjectsConfig{
			Count:     constants.DefaultProjectCount,
			COIFactor: 0,
		},
		QuorumVoters: QuorumVotersConfig{
			Count:        constants.DefaultVoterCount,
			InitialFunds: constants.DefaultMaxFunding,
			MinVote:      constants.DefaultMinVote,
			MaxVote:      constants.DefaultMaxVote,
			Laziness:     constants.DefaultLaziness,
			Expertise:    constants.DefaultExpertise,
		},
		PairwiseVoters: PairwiseVotersConfig{
			Count:     constants.DefaultVoterCount,
			Style:     agents.StyleSkewedTowardsImpact.String(),
			Expertise: constants.DefaultExpertise,
			Laziness:  constants.DefaultLaziness,
		},
		Funding: FundingConfig{
			ScoringMethod: funding.MethodMedian.String(),
			Quorum:        constants.DefaultQuorum,
			MinAmount:     constants.DefaultMinAmount,
			MaxFunding:    constants.DefaultMaxFunding,
			Normalize:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.votesim/config.yaml -> environment variables
func Load() (*VotesimConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.AppDir, constants.ConfigFile)
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	ApplyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file omits keep their defaults.
func LoadFromFile(path string) (*VotesimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Path = expandEnvVars(config.Store.Path)
	config.Logging.TraceDir = expandEnvVars(config.Logging.TraceDir)

	return config, nil
}

// YAML renders the configuration as a YAML document.
func (c *VotesimConfig) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Validate checks that the configuration is valid.
func (c *VotesimConfig) Validate() error {
	if c.Round.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Round.Runs)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	scenario, err := c.ToScenario()
	if err != nil {
		return err
	}
	return scenario.Validate()
}

// ToScenario converts the configuration into a runnable scenario.
func (c *VotesimConfig) ToScenario() (simulation.Scenario, error) {
	design, err := simulation.ParseVotingDesign(c.Round.Design)
	if err != nil {
		return simulation.Scenario{}, err
	}
	style, err := agents.ParseVotingStyle(c.PairwiseVoters.Style)
	if err != nil {
		return simulation.Scenario{}, fmt.Errorf("pairwise_voters.style: %w", err)
	}
	method, err := funding.ParseScoringMethod(c.Funding.ScoringMethod)
	if err != nil {
		return simulation.Scenario{}, fmt.Errorf("funding.scoring_method: %w", err)
	}

	return simulation.Scenario{
		Name:   c.Round.Name,
		Seed:   c.Round.Seed,
		Design: design,
		Projects: simulation.ProjectSpec{
			Count:     c.Projects.Count,
			COIFactor: c.Projects.COIFactor,
		},
		QuorumVoters: simulation.QuorumVoterSpec{
			Count:        c.QuorumVoters.Count,
			InitialFunds: c.QuorumVoters.InitialFunds,
			MinVote:      c.QuorumVoters.MinVote,
			MaxVote:      c.QuorumVoters.MaxVote,
			Laziness:     c.QuorumVoters.Laziness,
			Expertise:    c.QuorumVoters.Expertise,
			COIFactor:    c.QuorumVoters.COIFactor,
		},
		PairwiseVoters: simulation.PairwiseVoterSpec{
			Count:         c.PairwiseVoters.Count,
			Style:         style,
			Expertise:     c.PairwiseVoters.Expertise,
			Laziness:      c.PairwiseVoters.Laziness,
			EngagingInCOI: c.PairwiseVoters.EngagingInCOI,
		},
		Funding: simulation.FundingSpec{
			Params: funding.Params{
				Method:    method,
				Quorum:    c.Funding.Quorum,
				MinAmount: c.Funding.MinAmount,
			},
			MaxFunding: c.Funding.MaxFunding,
			Normalize:  c.Funding.Normalize,
		},
	}, nil
}

// AppDir returns ~/.votesim.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, constants.AppDir), nil
}

// StoreDir resolves the directory holding the results database.
func (c *VotesimConfig) StoreDir() (string, error) {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	return AppDir()
}

// TraceDir resolves the directory receiving trace.jsonl.
func (c *VotesimConfig) TraceDir() (string, error) {
	if c.Logging.TraceDir != "" {
		return expandHome(c.Logging.TraceDir)
	}
	return AppDir()
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Values that fail to parse are ignored.
func ApplyEnvOverrides(config *VotesimConfig) {
	if v := os.Getenv("VOTESIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Round.Seed = n
		}
	}

	if v := os.Getenv("VOTESIM_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Round.Runs = n
		}
	}

	if v := os.Getenv("VOTESIM_DESIGN"); v != "" {
		config.Round.Design = v
	}

	if v := os.Getenv("VOTESIM_SCORING_METHOD"); v != "" {
		config.Funding.ScoringMethod = v
	}

	if v := os.Getenv("VOTESIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("VOTESIM_DB_PATH"); v != "" {
		config.Store.Path = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

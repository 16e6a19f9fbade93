package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/votesim/internal/agents"
	"github.com/nvandessel/votesim/internal/funding"
	"github.com/nvandessel/votesim/internal/simulation"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Round.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", config.Round.Seed)
	}
	if config.Round.Runs != 10 {
		t.Errorf("expected Runs 10, got %d", config.Round.Runs)
	}
	if config.Round.Design != "quorum" {
		t.Errorf("expected Design 'quorum', got '%s'", config.Round.Design)
	}
	if config.Funding.ScoringMethod != "median" {
		t.Errorf("expected ScoringMethod 'median', got '%s'", config.Funding.ScoringMethod)
	}
	if !config.Funding.Normalize {
		t.Error("expected Normalize to be true by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if config.Store.Path != "" {
		t.Errorf("expected empty Store.Path, got '%s'", config.Store.Path)
	}
}

func TestDefault_MatchesDefaultScenario(t *testing.T) {
	scenario, err := Default().ToScenario()
	if err != nil {
		t.Fatalf("ToScenario failed: %v", err)
	}
	if scenario != simulation.DefaultScenario() {
		t.Errorf("default config scenario = %+v, want %+v", scenario, simulation.DefaultScenario())
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
round:
  seed: 7
  runs: 3
  design: pairwise
projects:
  count: 40
  coi_factor: 0.2
pairwise_voters:
  count: 12
  style: perfect
  engaging_in_coi: true
funding:
  scoring_method: quadratic
  quorum: 4
  normalize: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Round.Seed != 7 || config.Round.Runs != 3 {
		t.Errorf("expected seed 7 runs 3, got %d and %d", config.Round.Seed, config.Round.Runs)
	}
	if config.Projects.Count != 40 {
		t.Errorf("expected Projects.Count 40, got %d", config.Projects.Count)
	}
	if config.PairwiseVoters.Style != "perfect" || !config.PairwiseVoters.EngagingInCOI {
		t.Errorf("unexpected pairwise voters: %+v", config.PairwiseVoters)
	}
	if config.Funding.Normalize {
		t.Error("expected Normalize to be false")
	}
	// Omitted fields keep their defaults.
	if config.PairwiseVoters.Expertise != 0.7 {
		t.Errorf("expected default Expertise 0.7, got %f", config.PairwiseVoters.Expertise)
	}
	if config.Funding.MaxFunding != 30_000_000 {
		t.Errorf("expected default MaxFunding, got %f", config.Funding.MaxFunding)
	}

	scenario, err := config.ToScenario()
	if err != nil {
		t.Fatalf("ToScenario failed: %v", err)
	}
	if scenario.Design != simulation.DesignPairwise {
		t.Errorf("expected pairwise design, got %s", scenario.Design)
	}
	if scenario.PairwiseVoters.Style != agents.StylePerfect {
		t.Errorf("expected perfect style, got %s", scenario.PairwiseVoters.Style)
	}
	if scenario.Funding.Method != funding.MethodQuadratic || scenario.Funding.Quorum != 4 {
		t.Errorf("unexpected funding: %+v", scenario.Funding)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	badPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(badPath, []byte("round: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(badPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: ${TEST_VOTESIM_DIR}/results
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TEST_VOTESIM_DIR", "/tmp/votesim-test")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Store.Path != "/tmp/votesim-test/results" {
		t.Errorf("expected expanded path, got '%s'", config.Store.Path)
	}
}

func TestLoad_ReadsHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VOTESIM_RUNS", "")

	dir := filepath.Join(home, ".votesim")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("round:\n  runs: 5\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Round.Runs != 5 {
		t.Errorf("expected Runs 5 from home config, got %d", config.Round.Runs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOTESIM_SEED", "99")
	t.Setenv("VOTESIM_RUNS", "2")
	t.Setenv("VOTESIM_DESIGN", "pairwise")
	t.Setenv("VOTESIM_SCORING_METHOD", "outliers")
	t.Setenv("VOTESIM_LOG_LEVEL", "debug")
	t.Setenv("VOTESIM_DB_PATH", "/data/votesim")

	config := Default()
	ApplyEnvOverrides(config)

	if config.Round.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Round.Seed)
	}
	if config.Round.Runs != 2 {
		t.Errorf("expected Runs 2, got %d", config.Round.Runs)
	}
	if config.Round.Design != "pairwise" {
		t.Errorf("expected Design 'pairwise', got '%s'", config.Round.Design)
	}
	if config.Funding.ScoringMethod != "outliers" {
		t.Errorf("expected ScoringMethod 'outliers', got '%s'", config.Funding.ScoringMethod)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Store.Path != "/data/votesim" {
		t.Errorf("expected Store.Path '/data/votesim', got '%s'", config.Store.Path)
	}
}

func TestEnvOverrides_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("VOTESIM_SEED", "-3")
	t.Setenv("VOTESIM_RUNS", "many")

	config := Default()
	ApplyEnvOverrides(config)

	if config.Round.Seed != 42 || config.Round.Runs != 10 {
		t.Errorf("bad env values should be ignored, got seed %d runs %d", config.Round.Seed, config.Round.Runs)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*VotesimConfig)
	}{
		{"zero runs", func(c *VotesimConfig) { c.Round.Runs = 0 }},
		{"unknown design", func(c *VotesimConfig) { c.Round.Design = "ranked" }},
		{"unknown method", func(c *VotesimConfig) { c.Funding.ScoringMethod = "mode" }},
		{"unknown style", func(c *VotesimConfig) { c.PairwiseVoters.Style = "chaotic" }},
		{"unknown log level", func(c *VotesimConfig) { c.Logging.Level = "verbose" }},
		{"laziness above one", func(c *VotesimConfig) { c.QuorumVoters.Laziness = 1.5 }},
		{"negative quorum", func(c *VotesimConfig) { c.Funding.Quorum = -1 }},
		{"negative pool", func(c *VotesimConfig) { c.Funding.MaxFunding = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLevels(t *testing.T) {
	for _, level := range []string{"", "info", "debug", "trace", "DEBUG"} {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	config := Default()
	config.Round.Design = "pairwise"
	config.Store.Path = "/srv/votesim"

	data, err := config.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	if !strings.Contains(string(data), "scoring_method: median") {
		t.Errorf("expected scoring_method in output:\n%s", data)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if *loaded != *config {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, config)
	}
}

func TestStoreDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"", filepath.Join(home, ".votesim")},
		{"~/results", filepath.Join(home, "results")},
		{"/var/lib/votesim", "/var/lib/votesim"},
	}
	for _, tt := range tests {
		config := Default()
		config.Store.Path = tt.path
		got, err := config.StoreDir()
		if err != nil {
			t.Fatalf("StoreDir(%q) failed: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("StoreDir(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

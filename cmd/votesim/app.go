package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nvandessel/votesim/internal/config"
	"github.com/nvandessel/votesim/internal/logging"
	"github.com/nvandessel/votesim/internal/store"
)

// loadConfig resolves the configuration for a command: --config when
// given, otherwise ~/.votesim/config.yaml, then environment overrides and
// the --log-level flag.
func loadConfig(cmd *cobra.Command) (*config.VotesimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.VotesimConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		if err == nil {
			config.ApplyEnvOverrides(cfg)
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.VotesimConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

func openStore(cfg *config.VotesimConfig) (*store.SQLiteResultStore, error) {
	dir, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteResultStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	return s, nil
}

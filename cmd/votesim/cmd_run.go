package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nvandessel/votesim/internal/logging"
	"github.com/nvandessel/votesim/internal/metrics"
	"github.com/nvandessel/votesim/internal/simulation"
)

// topProjects is how many projects the text report lists.
const topProjects = 10

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured experiment",
		Long: `Run the configured experiment and print its averaged outcome.

Projects and badgeholders are generated from the seed; round i uses
seed+i. The result is saved to the result store unless --no-store is set.

Examples:
  votesim run                             # Defaults from ~/.votesim/config.yaml
  votesim run --design pairwise --runs 3  # Override the voting design
  votesim run --seed 7 --no-store --json  # One-off run as JSON
  votesim run --metrics -                 # Dump Prometheus metrics to stdout`,
		Args: cobra.NoArgs,
		RunE: runExperiment,
	}

	cmd.Flags().Int("runs", 0, "Number of rounds (overrides config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (overrides config)")
	cmd.Flags().String("design", "", "Voting design: quorum or pairwise (overrides config)")
	cmd.Flags().Bool("no-store", false, "Do not save the result")
	cmd.Flags().String("metrics", "", "Write Prometheus metrics to a file after the run (- for stdout)")

	return cmd
}

func runExperiment(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	noStore, _ := cmd.Flags().GetBool("no-store")
	metricsPath, _ := cmd.Flags().GetString("metrics")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("runs") {
		cfg.Round.Runs, _ = cmd.Flags().GetInt("runs")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Round.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("design") {
		cfg.Round.Design, _ = cmd.Flags().GetString("design")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	scenario, err := cfg.ToScenario()
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	traceDir, err := cfg.TraceDir()
	if err != nil {
		return err
	}
	trace := logging.NewTraceLogger(traceDir, cfg.Logging.Level)
	defer trace.Close()

	var recorder *metrics.Recorder
	if metricsPath != "" {
		recorder = metrics.New()
	}

	exp := simulation.Experiment{
		Scenario: scenario,
		Runs:     cfg.Round.Runs,
		Logger:   logger,
		Trace:    trace,
		Metrics:  recorder,
	}
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	var runID uuid.UUID
	if !noStore {
		cfgYAML, err := cfg.YAML()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		runID, err = s.SaveExperiment(cmd.Context(), cfgYAML, result)
		if err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		logger.Debug("result saved", "run_id", runID, "path", s.Path())
	}

	if recorder != nil {
		if err := writeMetrics(cmd, recorder, metricsPath); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		payload := map[string]any{
			"scenario": result.Scenario,
			"runs":     len(result.Rounds),
			"mean":     result.Mean,
			"projects": result.Projects,
		}
		if runID != uuid.Nil {
			payload["run_id"] = runID
		}
		return json.NewEncoder(out).Encode(payload)
	}

	fmt.Fprintf(out, "Experiment %q: %s design, %s scoring, %d rounds from seed %d\n",
		scenario.Name, scenario.Design, scenario.Funding.Method, len(result.Rounds), scenario.Seed)
	fmt.Fprintln(out)
	printSummary(out, result.Mean)
	fmt.Fprintln(out)
	printTopProjects(out, result.Projects, topProjects)
	fmt.Fprintln(out)
	if runID != uuid.Nil {
		fmt.Fprintf(out, "Saved run %s\n", runID)
	} else {
		fmt.Fprintln(out, "Result not saved (--no-store)")
	}
	return nil
}

func writeMetrics(cmd *cobra.Command, recorder *metrics.Recorder, path string) error {
	if path == "-" {
		return recorder.WriteText(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := recorder.WriteText(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return f.Close()
}

func printSummary(w io.Writer, s simulation.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  projects funded:\t%.1f\n", s.ProjectsAboveQuorum)
	fmt.Fprintf(tw, "  quorum pass rate:\t%.1f%%\n", s.QuorumPassRate*100)
	fmt.Fprintf(tw, "  avg payout:\t%.2f\n", s.AvgPayout)
	fmt.Fprintf(tw, "  median payout:\t%.2f\n", s.MedianPayout)
	fmt.Fprintf(tw, "  max payout:\t%.2f\n", s.MaxPayout)
	fmt.Fprintf(tw, "  gini:\t%.3f\n", s.Gini)
	fmt.Fprintf(tw, "  top 10%% share:\t%.1f%%\n", s.TopDecileShare*100)
	fmt.Fprintf(tw, "  impact alignment:\t%.3f\n", s.ImpactAlignment)
	tw.Flush()
}

func printTopProjects(w io.Writer, projects []simulation.ProjectAverage, n int) {
	ranked := slices.Clone(projects)
	slices.SortStableFunc(ranked, func(a, b simulation.ProjectAverage) int {
		return cmp.Compare(b.MeanTokenAmount, a.MeanTokenAmount)
	})
	ranked = ranked[:min(n, len(ranked))]

	fmt.Fprintf(w, "Top %d projects by mean payout:\n", len(ranked))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PROJECT\tOWNER\tIMPACT\tVOTES\tSCORE\tPAYOUT")
	for _, p := range ranked {
		owner := p.OwnerID
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%.1f\t%.2f\t%.2f\n",
			p.ProjectID, owner, p.TrueImpact, p.MeanVotes, p.MeanScore, p.MeanTokenAmount)
	}
	tw.Flush()
}

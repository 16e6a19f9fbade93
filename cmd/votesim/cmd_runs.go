package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/votesim/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved experiment results",
		Long: `List and show experiments saved by 'votesim run'.

Examples:
  votesim runs list            # Newest first
  votesim runs show 01927f3a   # Any unique id prefix works
  votesim runs prune --keep 20 # Delete all but the 20 newest runs`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsPruneCmd(),
	)

	return cmd
}

func newRunsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return json.NewEncoder(out).Encode(map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No saved runs. Use 'votesim run' to create one.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tNAME\tDESIGN\tMETHOD\tSEED\tROUNDS\tAVG PAYOUT\tGINI")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.2f\t%.3f\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Name, r.Design, r.ScoringMethod,
					r.Seed, r.Runs, r.Mean.AvgPayout, r.Mean.Gini)
			}
			return tw.Flush()
		},
	}
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			detail, err := s.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(detail)
			}

			fmt.Fprintf(out, "Run %s\n", detail.ID)
			fmt.Fprintf(out, "  created:  %s\n", detail.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "  scenario: %s (%s design, %s scoring)\n", detail.Name, detail.Design, detail.ScoringMethod)
			fmt.Fprintf(out, "  seed:     %d, %d rounds\n", detail.Seed, detail.Runs)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Mean outcome:")
			printSummary(out, detail.Mean)
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ROUND\tSEED\tVOTES\tFUNDED\tAVG PAYOUT\tGINI\tALIGNMENT\tDURATION")
			for _, r := range detail.Rounds {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%.0f\t%.2f\t%.3f\t%.3f\t%s\n",
					r.Index, r.Seed, r.VotesCast, r.Summary.ProjectsAboveQuorum, r.Summary.AvgPayout,
					r.Summary.Gini, r.Summary.ImpactAlignment, r.Duration.Round(time.Microsecond))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			printTopProjects(out, detail.Projects, topProjects)
			return nil
		},
	}
}

func newRunsPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old saved runs",
		Long: `Delete saved runs that no retention rule keeps.

A run survives if it is among the --keep newest or younger than --max-age.
At least one of the two must be given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")

			var policies []store.RetentionPolicy
			if cmd.Flags().Changed("keep") {
				if keep < 0 {
					return fmt.Errorf("--keep must be non-negative, got %d", keep)
				}
				policies = append(policies, &store.CountPolicy{MaxCount: keep})
			}
			if maxAge != "" {
				d, err := store.ParseDuration(maxAge)
				if err != nil {
					return fmt.Errorf("invalid --max-age: %w", err)
				}
				policies = append(policies, &store.AgePolicy{MaxAge: d})
			}
			if len(policies) == 0 {
				return fmt.Errorf("nothing to prune by: pass --keep or --max-age")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.Prune(cmd.Context(), &store.CompositePolicy{Policies: policies})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"deleted": len(deleted),
					"ids":     deleted,
				})
			}
			fmt.Fprintf(out, "Deleted %d run(s)\n", len(deleted))
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Keep this many newest runs")
	cmd.Flags().String("max-age", "", "Keep runs younger than this (e.g. 720h, 30d, 2w)")

	return cmd
}

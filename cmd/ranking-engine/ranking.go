package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRankingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Recompute, snapshot and inspect discipline rankings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "recompute <discipline>",
			Short: "Recompute the ranking points of every event in the ranking window",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithApp(func(ctx context.Context, a *app) error {
					ctx, cancel := context.WithTimeout(ctx, a.cfg.RecomputeTimeout())
					defer cancel()
					summary, err := a.ranking.RecomputeDiscipline(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(summary)
				})
			},
		},
		&cobra.Command{
			Use:   "event <event-id>",
			Short: "Recompute the ranking points of a single event",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				eventID, err := parseID(args[0])
				if err != nil {
					return err
				}
				return runWithApp(func(ctx context.Context, a *app) error {
					ctx, cancel := context.WithTimeout(ctx, a.cfg.RecomputeTimeout())
					defer cancel()
					summary, err := a.ranking.RecomputeEvent(ctx, eventID)
					if err != nil {
						return err
					}
					return printJSON(summary)
				})
			},
		},
		&cobra.Command{
			Use:   "snapshot <discipline>",
			Short: "Record today's ranking positions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithApp(func(ctx context.Context, a *app) error {
					summary, err := a.ranking.Snapshot(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(summary)
				})
			},
		},
		newRankingShowCmd(),
	)
	return cmd
}

func newRankingShowCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show <discipline>",
		Short: "Print the current ranking, or a stored snapshot with --date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var on time.Time
			if date != "" {
				parsed, err := parseDate(date)
				if err != nil {
					return err
				}
				on = parsed
			}
			return runWithApp(func(ctx context.Context, a *app) error {
				if !on.IsZero() {
					rows, err := a.ranking.SnapshotAt(ctx, args[0], on)
					if err != nil {
						return err
					}
					return printJSON(rows)
				}
				ranking, err := a.ranking.Ranking(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(ranking)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Snapshot date (YYYY-MM-DD)")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

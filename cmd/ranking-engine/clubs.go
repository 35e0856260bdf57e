package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newClubsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clubs",
		Short: "Recompute and inspect club points of a series",
	}

	var clubID int64
	recompute := &cobra.Command{
		Use:   "recompute <series-id>",
		Short: "Recompute club points for a series, optionally for one club",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var club *int64
			if cmd.Flags().Changed("club") {
				club = &clubID
			}
			return runWithApp(func(ctx context.Context, a *app) error {
				ctx, cancel := context.WithTimeout(ctx, a.cfg.RecomputeTimeout())
				defer cancel()
				summary, err := a.clubs.RecomputeClubPoints(ctx, seriesID, club)
				if err != nil {
					return err
				}
				return printJSON(summary)
			})
		},
	}
	recompute.Flags().Int64Var(&clubID, "club", 0, "Only recompute this club")

	standings := &cobra.Command{
		Use:   "standings <series-id>",
		Short: "Print the club standings of a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runWithApp(func(ctx context.Context, a *app) error {
				view, err := a.clubs.ClubStandings(ctx, seriesID)
				if err != nil {
					return err
				}
				return printJSON(view)
			})
		},
	}

	cmd.AddCommand(recompute, standings)
	return cmd
}

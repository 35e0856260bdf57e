package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yourusername/ranking-engine/internal/service"
)

func newStandingsCmd() *cobra.Command {
	var (
		classID int64
		bestN   int
	)
	cmd := &cobra.Command{
		Use:   "standings <series-id>",
		Short: "Print the standings of a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesID, err := parseID(args[0])
			if err != nil {
				return err
			}
			q := service.StandingsQuery{SeriesID: seriesID}
			if cmd.Flags().Changed("class") {
				q.ClassID = &classID
			}
			if cmd.Flags().Changed("best") {
				q.BestN = &bestN
			}
			return runWithApp(func(ctx context.Context, a *app) error {
				view, err := a.standings.SeriesStandings(ctx, q)
				if err != nil {
					return err
				}
				return printJSON(view)
			})
		},
	}
	cmd.Flags().Int64Var(&classID, "class", 0, "Only include this class")
	cmd.Flags().IntVar(&bestN, "best", 0, "Count only the best N events (defaults to the series setting)")
	return cmd
}

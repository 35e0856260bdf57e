package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "classify <rider-id> <discipline>",
		Short: "Print the class a rider competes in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			riderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runWithApp(func(ctx context.Context, a *app) error {
				on := time.Now().In(a.cfg.Location())
				if date != "" {
					if on, err = parseDate(date); err != nil {
						return err
					}
				}
				class, err := a.classes.Classify(ctx, riderID, args[1], on)
				if err != nil {
					return err
				}
				if class == nil {
					return fmt.Errorf("rider %d has no %s class on %s", riderID, args[1], on.Format(time.DateOnly))
				}
				return printJSON(class)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Classification date (YYYY-MM-DD), defaults to today")
	return cmd
}

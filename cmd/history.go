package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/lipsync-pipeline/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.conf.Paths.History == "" {
				return errors.New("paths.history is not configured")
			}
			store, err := history.Open(a.conf.Paths.History)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return c
}

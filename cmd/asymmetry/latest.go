package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dudk/asymmetry/score"
	"github.com/dudk/asymmetry/sink/console"
	"github.com/dudk/asymmetry/store"
)

func newLatestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the latest persisted score.",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			c, err := a.load()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), c.Store, c.StoreDSN)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, st.Close())
			}()

			r, ok, err := st.Latest(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("No score yet")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			defer func() { _ = table.Close() }()
			table.Header([]string{"Pipe", "Seq", "Time", "Raw", "Score", "Smoothed", "Mood"})
			row := []string{
				r.PipeID,
				strconv.FormatUint(r.Seq, 10),
				"-",
				fmt.Sprintf("%.4f", r.Raw),
				fmt.Sprintf("%.2f", r.Score),
				fmt.Sprintf("%.2f", r.Smoothed),
				console.Label(score.MoodOf(r.Score)),
			}
			if !r.Time.IsZero() {
				row[2] = r.Time.Format(time.RFC3339)
			}
			if err := table.Bulk([][]string{row}); err != nil {
				return err
			}
			return table.Render()
		},
	}
}

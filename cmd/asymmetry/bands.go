package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/dudk/asymmetry/filter"
)

func newBandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "List named frequency bands.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			defer func() { _ = table.Close() }()
			table.Header([]string{"Band", "Low, Hz", "High, Hz"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
			var data [][]string
			for _, b := range filter.Bands {
				data = append(data, []string{b.Name, fmt.Sprintf("%.1f", b.Low), fmt.Sprintf("%.1f", b.High)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		},
	}
}

package cmd

import (
	"github.com/Ham-Mazz/stock-portfolio-analyzer/analysis"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	var (
		format    string
		smaWindow int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Prints per-ticker price statistics computed from the stored table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Analysis.Format
			}
			if !cmd.Flags().Changed("sma-window") {
				smaWindow = cfg.Analysis.SMAWindow
			}

			runner := analysis.NewRunner(cfg, log)
			summaries := runner.Summary(cmd.Context(), smaWindow)
			return analysis.Render(cmd.OutOrStdout(), analysis.SummaryResultSet(summaries), format, 0)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv, json or yaml")
	cmd.Flags().IntVar(&smaWindow, "sma-window", 20, "trailing closes in the simple moving average")
	return cmd
}

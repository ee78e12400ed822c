package cmd

import (
	"fmt"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/analysis"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Runs the report SQL files against the stored table and prints the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger(cmd)
			if err != nil {
				return err
			}

			files := cfg.Analysis.Files
			if len(args) > 0 {
				files = args
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Analysis.Format
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Analysis.PreviewRows
			}

			runner := analysis.NewRunner(cfg, log)
			out := cmd.OutOrStdout()
			for i, report := range runner.RunReports(cmd.Context(), files) {
				if i > 0 {
					fmt.Fprintln(out)
				}
				title := fmt.Sprintf("--- %s ---", report.File)
				if limit > 0 && report.Result.Len() > limit {
					title = fmt.Sprintf("--- %s (first %d of %d rows) ---", report.File, limit, report.Result.Len())
				}
				fmt.Fprintln(out, title)
				if err := analysis.Render(out, report.Result, format, limit); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv, json or yaml")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows shown per report, 0 for all (default analysis.preview_rows)")
	return cmd
}

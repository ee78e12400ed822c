package cmd

import (
	"errors"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/analysis"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		file   string
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "query (--file PATH | SQL)",
		Short: "Runs one SQL statement or SQL file against the stored table",
		Example: "  stockfolio query \"SELECT ticker, AVG(close) FROM stock_prices GROUP BY ticker\"\n" +
			"  stockfolio query --file sql/01_volatility.sql --format json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(args) == 0) {
				return errors.New("pass either a SQL statement or --file, not both")
			}

			cfg, log, err := initializeConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Analysis.Format
			}

			runner := analysis.NewRunner(cfg, log)
			var results load.ResultSet
			if file != "" {
				results = runner.ExecuteFile(cmd.Context(), file)
			} else {
				results = runner.ExecuteQuery(cmd.Context(), args[0])
			}

			return analysis.Render(cmd.OutOrStdout(), results, format, limit)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "SQL file to run; {{.Table}} expands to store.table")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv, json or yaml")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print, 0 for all")
	return cmd
}

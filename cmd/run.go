package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/pipeline"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/utils"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "run [tickers]",
		Short: "Fetches daily prices for the tickers and replaces the stored table",
		Long: "Fetches the trailing window of daily prices for each ticker, one at a time,\n" +
			"and replaces the stored table with the combined rows. Tickers default to\n" +
			"extract.tickers; pass a comma-separated list to override, e.g. AAPL,MSFT.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Extract.Tickers = utils.SplitTickers(args[0])
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- Starting Stock Portfolio ETL ---")

			res, err := p.Run(cmd.Context())
			if err != nil {
				if errors.Is(err, pipeline.ErrNoData) {
					fmt.Fprintln(out, "--- ETL Failed: No data fetched ---")
				} else {
					fmt.Fprintf(out, "--- ETL Failed: %v ---\n", err)
				}
				return err
			}

			if exportPath != "" {
				if err := exportCSV(exportPath, res); err != nil {
					return err
				}
				log.Info("Exported dataset", "path", exportPath, "rows", len(res.Dataset))
			}

			if res.Stored == 0 {
				fmt.Fprintf(out, "--- ETL Finished Without Saving: fetched %d rows, store write failed (see logs) ---\n", res.Fetched)
				return nil
			}
			fmt.Fprintln(out, "--- ETL Process Completed Successfully ---")
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "also write the fetched rows to this CSV file")
	return cmd
}

func exportCSV(path string, res pipeline.RunResult) error {
	data, err := res.Dataset.CSV()
	if err != nil {
		return fmt.Errorf("error encoding export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing export: %w", err)
	}
	return nil
}

package cmd

import (
	"context"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/pipeline"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/schedule"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/utils"
	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var (
		cronSpec string
		runNow   bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Runs the ETL on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cron") {
				cfg.Schedule.Cron = cronSpec
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return err
			}

			scheduler, err := schedule.New(cfg.Schedule.Cron, log)
			if err != nil {
				return err
			}

			job := func(ctx context.Context) {
				if _, err := p.Run(ctx); err != nil {
					log.Error("Scheduled ETL run failed", "error", err)
				}
			}
			if err := scheduler.Add("etl", job); err != nil {
				return err
			}

			if runNow {
				job(cmd.Context())
			}

			scheduler.Run(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "five-field cron expression (default schedule.cron)")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run the ETL once before waiting for the first tick")
	return cmd
}

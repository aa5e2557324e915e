package cmd

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *options) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Work with scheduled transactions",
	}
	scheduleCmd.AddCommand(newScheduleRunCmd(opts))
	return scheduleCmd
}

func newScheduleRunCmd(opts *options) *cobra.Command {
	var (
		date    string
		catchUp bool
		dump    bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize every schedule due on or before a day",
		Long: `Runs the scheduled job once. Each due schedule is applied in its own
database transaction; failures are listed and do not stop the run.

Example:
  ledgerctl schedule run
  ledgerctl schedule run --date 2025-06-01 --catch-up --dump`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("catch-up") {
				cfg.SchedulerCatchUp = catchUp
			}

			today := civil.DateOf(time.Now().In(cfg.Location()))
			if date != "" {
				if today, err = civil.ParseDate(date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			app, err := opts.appFrom(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Job.Run(cmd.Context(), today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dump {
				spew.Fdump(out, result)
				return nil
			}

			fmt.Fprintf(out, "%s: fired %d, applied %d, retired %d, failed %d\n",
				result.Date, result.Fired, result.Applied, result.Retired, len(result.Failed))
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  %s: %v\n", f.ScheduleID, f.Err)
			}
			return nil
		},
	}

	runCmd.Flags().StringVar(&date, "date", "", "day to run for (YYYY-MM-DD), defaults to today in SCHEDULER_TIMEZONE")
	runCmd.Flags().BoolVar(&catchUp, "catch-up", false, "fire every missed occurrence, overriding SCHEDULER_CATCH_UP")
	runCmd.Flags().BoolVar(&dump, "dump", false, "print the full job result")
	return runCmd
}

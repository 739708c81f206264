package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adityavk/nsescreener/internal/scheduler"
	"github.com/adityavk/nsescreener/internal/scheduler/jobs"
)

// schedulerCmd runs the daily job scheduler in the foreground
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily job scheduler",
	Long: `Runs the cron scheduler in the foreground with the daily jobs:

  master_list_ingest  08:00 IST  refresh the symbol master list
  universe_refresh    08:30 IST  recompute the filtered universe
  price_collection    18:00 IST  fetch daily bars after market close
  data_cleanup        Sun 02:00  prune bars past the retention window

Example:
  go run ./cmd/screener scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.New(a.logger)

	jobList := []scheduler.Job{
		jobs.NewIngestJob(a.nseClient, a.symbolStore, a.logger),
		jobs.NewUniverseJob(a.orchestrator, a.snapshots, a.logger),
		jobs.NewPricesJob(a.orchestrator, a.priceFetcher, a.logger),
		jobs.NewCleanupJob(a.priceRepo, a.logger),
	}

	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	sched.Start()

	fmt.Println("Scheduler running with jobs:")
	for _, job := range jobList {
		fmt.Printf("  %-20s %s\n", job.Name(), job.Schedule())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

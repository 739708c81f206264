package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd reports the state of the application's data stores
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database, cache and master list status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	health, err := a.db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("Database:    unhealthy (%s)\n", health.Error)
	} else {
		fmt.Printf("Database:    healthy (%v, %d/%d conns)\n",
			health.ResponseTime, health.Stats.TotalConns, health.Stats.MaxConns)
	}

	if a.redis.Enabled() {
		fmt.Println("Redis:       enabled")
	} else {
		fmt.Println("Redis:       disabled")
	}

	count, err := a.symbolStore.Count(ctx)
	if err != nil {
		fmt.Printf("Master list: error (%v)\n", err)
	} else {
		fmt.Printf("Master list: %d symbols\n", count)
	}

	info, err := a.orchestrator.CacheInfo(ctx)
	if err != nil {
		fmt.Printf("Cache:       error (%v)\n", err)
	} else if !info.Exists {
		fmt.Println("Cache:       empty")
	} else {
		state := "current"
		if info.Stale {
			state = fmt.Sprintf("stale (%d day(s) old)", info.AgeDays)
		}
		fmt.Printf("Cache:       %d symbols, %s, date %s\n", info.Count, state, info.Date)
	}

	latest, err := a.priceRepo.LatestTradeDate(ctx)
	if err != nil {
		fmt.Printf("Prices:      error (%v)\n", err)
	} else if latest.IsZero() {
		fmt.Println("Prices:      no data")
	} else {
		fmt.Printf("Prices:      latest trade date %s\n", latest.Format("2006-01-02"))
	}

	return nil
}

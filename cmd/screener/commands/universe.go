package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd groups filtered-universe operations
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Resolve and manage the filtered stock universe",
}

var universeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print today's filtered universe (cached when current)",
	RunE:  runUniverseShow,
}

var universeRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute the universe, bypassing the cache",
	RunE:  runUniverseRefresh,
}

var universeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the universe cache",
	RunE:  runUniverseClear,
}

var universeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache state and the last resolution outcome",
	RunE:  runUniverseStatus,
}

func init() {
	universeCmd.AddCommand(universeShowCmd)
	universeCmd.AddCommand(universeRefreshCmd)
	universeCmd.AddCommand(universeClearCmd)
	universeCmd.AddCommand(universeStatusCmd)
	rootCmd.AddCommand(universeCmd)
}

func runUniverseShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	symbols, err := a.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	for _, symbol := range symbols {
		fmt.Println(symbol)
	}
	fmt.Printf("\n%d symbols\n", len(symbols))

	return nil
}

func runUniverseRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	symbols, err := a.orchestrator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	// Record the run in the history table as well
	if entry, err := a.orchestrator.CacheEntry(ctx); err == nil && entry != nil {
		if err := a.snapshots.SaveSnapshot(ctx, entry); err != nil {
			a.logger.WithError(err).Warn("Failed to save universe snapshot")
		}
	}

	fmt.Printf("Refreshed: %d symbols\n", len(symbols))
	return nil
}

func runUniverseClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.orchestrator.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	fmt.Println("Cache cleared")
	return nil
}

func runUniverseStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	info, err := a.orchestrator.CacheInfo(ctx)
	if err != nil {
		return fmt.Errorf("read cache info: %w", err)
	}

	fmt.Println("Universe cache:")
	if !info.Exists {
		fmt.Println("  no cache entry")
		// Fall back to the history table so a cleared cache still
		// shows the last known universe
		if entry, err := a.snapshots.GetLatestSnapshot(ctx); err == nil {
			fmt.Printf("\nLast saved snapshot: %s (%d symbols)\n", entry.Date, entry.Count)
		}
		return nil
	}

	fmt.Printf("  date:     %s\n", info.Date)
	fmt.Printf("  count:    %d\n", info.Count)
	fmt.Printf("  current:  %t\n", info.Current)
	fmt.Printf("  stale:    %t\n", info.Stale)
	if info.Stale {
		fmt.Printf("  age:      %d day(s)\n", info.AgeDays)
	}
	if info.DurationSeconds > 0 {
		fmt.Printf("  computed in %.1fs\n", info.DurationSeconds)
	}

	return nil
}

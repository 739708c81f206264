package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adityavk/nsescreener/internal/analysis"
)

// scanCmd groups technical scans over the filtered universe
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run technical scans over the filtered universe",
}

var scanSMACmd = &cobra.Command{
	Use:   "sma",
	Short: "List stocks trading above their moving average",
	RunE:  runScanSMA,
}

var scanNearSMACmd = &cobra.Command{
	Use:   "near-sma",
	Short: "List stocks trading near their moving average, by breakout status",
	RunE:  runScanNearSMA,
}

var scanOpenExtremesCmd = &cobra.Command{
	Use:   "open-extremes",
	Short: "List stocks whose latest bar opened at its high or low",
	RunE:  runScanOpenExtremes,
}

var scanBreakoutsCmd = &cobra.Command{
	Use:   "breakouts",
	Short: "List stocks that closed above yesterday's open=high bar",
	RunE:  runScanBreakouts,
}

var (
	scanPeriod   int
	scanDistance float64
)

func init() {
	scanSMACmd.Flags().IntVar(&scanPeriod, "period", analysis.DefaultSMAPeriod, "moving average period")
	scanNearSMACmd.Flags().IntVar(&scanPeriod, "period", analysis.DefaultSMAPeriod, "moving average period")
	scanNearSMACmd.Flags().Float64Var(&scanDistance, "distance", analysis.DefaultNearSMADistance, "max percent distance from the average")

	scanCmd.AddCommand(scanSMACmd)
	scanCmd.AddCommand(scanNearSMACmd)
	scanCmd.AddCommand(scanOpenExtremesCmd)
	scanCmd.AddCommand(scanBreakoutsCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScanSMA(cmd *cobra.Command, args []string) error {
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

	barsBySymbol, err := a.priceRepo.GetBarsBulk(ctx, symbols, scanPeriod)
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	results := analysis.ScanAboveSMA(barsBySymbol, scanPeriod)

	fmt.Printf("%d of %d stocks above %d-day SMA:\n\n", len(results), len(symbols), scanPeriod)
	fmt.Printf("%-12s %10s %10s %8s\n", "SYMBOL", "CLOSE", "SMA", "ABOVE%")
	for _, r := range results {
		fmt.Printf("%-12s %10.2f %10.2f %7.2f%%\n", r.Symbol, r.Close, r.SMA, r.PctAboveSMA)
	}

	return nil
}

func runScanNearSMA(cmd *cobra.Command, args []string) error {
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

	barsBySymbol, err := a.priceRepo.GetBarsBulk(ctx, symbols, scanPeriod+1)
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	results := analysis.ScanNearSMA(barsBySymbol, scanPeriod, scanDistance)

	fmt.Printf("%d of %d stocks within %.1f%% of the %d-day SMA:\n\n", len(results), len(symbols), scanDistance, scanPeriod)
	fmt.Printf("%-12s %10s %10s %8s  %s\n", "SYMBOL", "CLOSE", "SMA", "FROM%", "STATUS")
	for _, r := range results {
		fmt.Printf("%-12s %10.2f %10.2f %7.2f%%  %s\n", r.Symbol, r.Close, r.SMA, r.PctFromSMA, r.Status)
	}

	return nil
}

func runScanOpenExtremes(cmd *cobra.Command, args []string) error {
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

	barsBySymbol, err := a.priceRepo.GetBarsBulk(ctx, symbols, 1)
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	results := analysis.ScanOpenExtremes(barsBySymbol)

	fmt.Printf("%d of %d stocks opened at a session extreme:\n\n", len(results), len(symbols))
	fmt.Printf("%-12s %-10s %10s %10s %8s\n", "SYMBOL", "PATTERN", "OPEN", "CLOSE", "MOVE%")
	for _, r := range results {
		fmt.Printf("%-12s %-10s %10.2f %10.2f %7.2f%%\n", r.Symbol, r.Pattern, r.Open, r.Close, r.MovePct)
	}

	return nil
}

func runScanBreakouts(cmd *cobra.Command, args []string) error {
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

	// Two bars per symbol: yesterday's open=high bar and today's close
	barsBySymbol, err := a.priceRepo.GetBarsBulk(ctx, symbols, 2)
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	results := analysis.ScanOpenHighBreakouts(barsBySymbol)

	fmt.Printf("%d of %d stocks broke above an open=high bar:\n\n", len(results), len(symbols))
	fmt.Printf("%-12s %12s %10s %10s %8s\n", "SYMBOL", "PREV HIGH", "CLOSE", "DATE", "BREAK%")
	for _, r := range results {
		fmt.Printf("%-12s %12.2f %10.2f %10s %7.2f%%\n", r.Symbol, r.YesterdayHigh, r.Close, r.TradeDate, r.BreakoutPct)
	}

	return nil
}

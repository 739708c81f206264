package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ingestCmd downloads the NSE master list into the symbol store
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download and store the NSE symbol master list",
	Long: `Downloads the equity master list from the NSE archives and
replaces the stored tradable-stocks table.

Example:
  go run ./cmd/screener ingest`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	symbols, err := a.nseClient.FetchMasterList(ctx)
	if err != nil {
		return fmt.Errorf("fetch master list: %w", err)
	}

	if err := a.symbolStore.Replace(ctx, symbols); err != nil {
		return fmt.Errorf("replace master list: %w", err)
	}

	breakdown, err := a.symbolStore.SeriesBreakdown(ctx)
	if err == nil {
		fmt.Printf("Ingested %d symbols:\n", len(symbols))
		for series, count := range breakdown {
			fmt.Printf("  %-6s %d\n", series, count)
		}
	} else {
		fmt.Printf("Ingested %d symbols\n", len(symbols))
	}

	return nil
}

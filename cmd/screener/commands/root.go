package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "NSE stock screening toolkit",
	Long: `NSE Stock Screener

Personal-scale screening pipeline for NSE equities: maintains the
tradable-symbol master list, resolves a liquidity-filtered universe with
a daily cache, collects price history and runs technical scans.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener ingest
  go run ./cmd/screener universe show
  go run ./cmd/screener universe refresh
  go run ./cmd/screener scan sma
  go run ./cmd/screener api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityavk/nsescreener/internal/api"
	"github.com/adityavk/nsescreener/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the dashboard API server",
	Long: `Starts the REST API server backing the dashboard.

Endpoints:
  GET    /health                    - Health check
  GET    /api/universe              - Current filtered universe
  POST   /api/universe/refresh      - Recompute, bypassing cache
  GET    /api/universe/cache        - Cache state
  DELETE /api/universe/cache        - Clear cache
  GET    /api/universe/status       - Last resolution outcome
  GET    /api/universe/snapshot     - Last persisted universe snapshot
  GET    /api/scan/sma              - Stocks above moving average
  GET    /api/scan/near-sma         - Stocks near their moving average
  GET    /api/scan/open-extremes    - Open-at-extreme patterns
  GET    /api/scan/breakouts        - Open=high two-day breakouts
  GET    /api/stocks/{symbol}/prices - Daily price history
  WS     /ws/refresh                - Live refresh progress

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8085`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.logger

	universeHandler := handlers.NewUniverseHandler(a.orchestrator, a.snapshots, log)
	scanHandler := handlers.NewScanHandler(a.orchestrator, a.priceRepo, log)
	stockHandler := handlers.NewStockHandler(a.priceRepo, log)
	refreshStream := api.NewRefreshStream(a.orchestrator, log)

	router := api.NewRouter(universeHandler, scanHandler, stockHandler, refreshStream, log)
	server := api.New(a.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

package jobs

import (
	"context"
	"fmt"

	"github.com/adityavk/nsescreener/internal/prices"
	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// historyDays is how much daily history the price job maintains. Enough
// for the 20-day trend scan with headroom for holidays.
const historyDays = 60

// PricesJob fetches daily bars for the filtered universe after market
// close
type PricesJob struct {
	orchestrator *universe.Orchestrator
	fetcher      *prices.Fetcher
	logger       *logger.Logger
}

// NewPricesJob creates a new price collection job
func NewPricesJob(orch *universe.Orchestrator, fetcher *prices.Fetcher, log *logger.Logger) *PricesJob {
	return &PricesJob{
		orchestrator: orch,
		fetcher:      fetcher,
		logger:       log,
	}
}

// Name returns the job name
func (j *PricesJob) Name() string {
	return "price_collection"
}

// Schedule runs after NSE close, 6 PM IST daily
func (j *PricesJob) Schedule() string {
	return "0 0 18 * * *"
}

// Run fetches and stores bars for every symbol in today's universe
func (j *PricesJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled price collection")

	symbols, err := j.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}
	if len(symbols) == 0 {
		j.logger.Warn("Universe is empty, nothing to fetch")
		return nil
	}

	result, err := j.fetcher.FetchAndStore(ctx, symbols, historyDays)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"requested": result.Requested,
		"saved":     result.Saved,
		"missing":   result.Missing,
	}).Info("Price collection completed")

	return nil
}

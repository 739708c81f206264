package prices

import (
	"context"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
	"github.com/adityavk/nsescreener/pkg/redis"
)

const defaultBatchSize = 25

// FetchResult summarizes one bulk price fetch
type FetchResult struct {
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`
	Missing   int `json:"missing"`
	Saved     int `json:"saved"`
}

// Fetcher pulls daily bars for a symbol list from the market data
// provider and persists them. Symbols are fetched in batches with a
// pause in between so the provider is not hammered; a symbol without
// data is counted and skipped, never fatal.
type Fetcher struct {
	provider   contracts.MarketDataProvider
	repo       *Repository
	cache      *redis.Cache
	logger     *logger.Logger
	batchSize  int
	batchDelay time.Duration
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithBatching overrides batch size and inter-batch delay
func WithBatching(size int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.batchSize = size
		}
		f.batchDelay = delay
	}
}

// NewFetcher creates a new price fetcher
func NewFetcher(provider contracts.MarketDataProvider, repo *Repository, cache *redis.Cache, log *logger.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:   provider,
		repo:       repo,
		cache:      cache,
		logger:     log,
		batchSize:  defaultBatchSize,
		batchDelay: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAndStore retrieves up to days of history for every symbol and
// upserts the bars. The returned result is valid even when err is
// non-nil; only a cancelled context aborts the run early.
func (f *Fetcher) FetchAndStore(ctx context.Context, symbols []string, days int) (FetchResult, error) {
	result := FetchResult{Requested: len(symbols)}

	for start := 0; start < len(symbols); start += f.batchSize {
		end := start + f.batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		history, err := f.provider.BulkHistory(ctx, batch, days)
		if err != nil {
			return result, err
		}

		for _, symbol := range batch {
			bars, ok := history[symbol]
			if !ok || len(bars) == 0 {
				result.Missing++
				continue
			}
			result.Fetched++

			if err := f.repo.SaveBars(ctx, symbol, bars); err != nil {
				f.logger.WithField("symbol", symbol).WithError(err).Error("Failed to save bars")
				continue
			}
			result.Saved++

			f.cacheBars(ctx, symbol, bars)
		}

		f.logger.WithFields(map[string]interface{}{
			"batch_start": start,
			"batch_size":  len(batch),
			"fetched":     result.Fetched,
		}).Debug("Price batch completed")

		if end < len(symbols) && f.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(f.batchDelay):
			}
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"requested": result.Requested,
		"fetched":   result.Fetched,
		"missing":   result.Missing,
		"saved":     result.Saved,
	}).Info("Price fetch completed")

	return result, nil
}

// cacheBars keeps the latest bars in Redis for the dashboard. Best
// effort: a cache failure is logged and ignored.
func (f *Fetcher) cacheBars(ctx context.Context, symbol string, bars []contracts.Bar) {
	if f.cache == nil {
		return
	}
	latest := bars[len(bars)-1].Date.Format("2006-01-02")
	if err := f.cache.Set(ctx, redis.PriceKey(symbol, latest), bars, redis.TTLMedium); err != nil {
		f.logger.WithField("symbol", symbol).WithError(err).Debug("Price cache write failed")
	}
}

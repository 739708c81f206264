package universe

import (
	"context"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Sampler retrieves market figures for a bounded sample of symbols.
// The sample bound is a deliberate accuracy/cost tradeoff toward the
// external provider's rate limits: callers needing full coverage must
// invoke repeatedly across partitions.
type Sampler struct {
	provider   contracts.MarketDataProvider
	logger     *logger.Logger
	callDelay  time.Duration // fixed pause between per-symbol metadata calls
	batchDelay time.Duration // longer pause after the bulk history call
}

// SamplerOption configures a Sampler
type SamplerOption func(*Sampler)

// WithDelays overrides the static backpressure delays. Tests pass zero.
func WithDelays(callDelay, batchDelay time.Duration) SamplerOption {
	return func(s *Sampler) {
		s.callDelay = callDelay
		s.batchDelay = batchDelay
	}
}

// NewSampler creates a new Sampler
func NewSampler(provider contracts.MarketDataProvider, log *logger.Logger, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		provider:   provider,
		logger:     log,
		callDelay:  50 * time.Millisecond,
		batchDelay: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample fetches a trailing history window plus per-symbol valuation for
// the first sampleSize symbols and computes derived figures. Symbols
// with no usable rows or no market cap are omitted from the result,
// never present with partial fields; omission is the contract signal
// for "indeterminate". An individual symbol failure never aborts the
// batch.
func (s *Sampler) Sample(ctx context.Context, symbols []string, sampleSize int, trailingDays int) (map[string]contracts.MarketSample, error) {
	if len(symbols) == 0 {
		return map[string]contracts.MarketSample{}, nil
	}

	sample := symbols
	if sampleSize > 0 && len(symbols) > sampleSize {
		sample = symbols[:sampleSize]
	}

	s.logger.WithFields(map[string]interface{}{
		"sample_size":   len(sample),
		"trailing_days": trailingDays,
	}).Info("Fetching market cap and volume data")

	history, err := s.provider.BulkHistory(ctx, sample, trailingDays)
	if err != nil {
		// Whole-batch failure: every symbol becomes indeterminate
		s.logger.WithError(err).Warn("Bulk history fetch failed")
		return map[string]contracts.MarketSample{}, nil
	}

	if s.batchDelay > 0 {
		sleepCtx(ctx, s.batchDelay)
	}

	result := make(map[string]contracts.MarketSample, len(sample))

	for i, symbol := range sample {
		bars, ok := history[symbol]
		if !ok || len(bars) == 0 {
			continue
		}

		avgValue := averageTradedValue(bars)
		if avgValue <= 0 {
			continue
		}

		meta, err := s.provider.Metadata(ctx, symbol)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Debug("Metadata fetch failed, symbol treated as indeterminate")
			continue
		}
		if meta == nil || meta.MarketCap == nil || *meta.MarketCap <= 0 {
			continue
		}

		result[symbol] = contracts.MarketSample{
			Symbol:            symbol,
			MarketCapCr:       *meta.MarketCap / contracts.RupeesPerCrore,
			AvgDailyValueLakh: avgValue / contracts.RupeesPerLakh,
		}

		if s.callDelay > 0 && i < len(sample)-1 {
			sleepCtx(ctx, s.callDelay)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"requested": len(sample),
		"sampled":   len(result),
	}).Info("Market data sampling completed")

	return result, nil
}

// averageTradedValue computes mean(close*volume) over the bars,
// skipping rows with zero close or volume
func averageTradedValue(bars []contracts.Bar) float64 {
	var sum float64
	var n int
	for _, bar := range bars {
		if bar.Close <= 0 || bar.Volume <= 0 {
			continue
		}
		sum += bar.TradedValue()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sleepCtx sleeps for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

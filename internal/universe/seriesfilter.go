package universe

import (
	"context"
	"fmt"
	"sort"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// DefaultExcludedSeries are the non-standard trading categories dropped
// before any market data is fetched. BE is trade-for-trade settlement,
// BZ is suspended/blacklisted.
var DefaultExcludedSeries = []string{"BE", "BZ"}

// SeriesFilter narrows the full symbol universe by series tag.
// Pure apart from the symbol store query: no side effects, no caching.
type SeriesFilter struct {
	store  contracts.SymbolStore
	logger *logger.Logger
}

// NewSeriesFilter creates a new SeriesFilter
func NewSeriesFilter(store contracts.SymbolStore, log *logger.Logger) *SeriesFilter {
	return &SeriesFilter{
		store:  store,
		logger: log,
	}
}

// Filter returns the tickers whose series is not in excluded, sorted
// lexicographically. On a store failure it returns an empty list along
// with the error; callers must check the error to tell failure apart
// from a genuinely empty universe.
func (f *SeriesFilter) Filter(ctx context.Context, excluded []string) ([]string, error) {
	if excluded == nil {
		excluded = DefaultExcludedSeries
	}

	symbols, err := f.store.ListSymbols(ctx)
	if err != nil {
		f.logger.WithError(err).Error("Symbol store query failed")
		return []string{}, fmt.Errorf("list symbols: %w: %v", contracts.ErrDataUnavailable, err)
	}

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, s := range excluded {
		excludedSet[s] = struct{}{}
	}

	tickers := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if _, skip := excludedSet[sym.Series]; skip {
			continue
		}
		tickers = append(tickers, sym.Ticker)
	}

	sort.Strings(tickers)

	f.logger.WithFields(map[string]interface{}{
		"total":    len(symbols),
		"passed":   len(tickers),
		"excluded": excluded,
	}).Debug("Series filter applied")

	return tickers, nil
}

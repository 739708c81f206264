package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

func testCriteria() contracts.FilterCriteria {
	return contracts.FilterCriteria{
		ExcludedSeries:    []string{"BE", "BZ"},
		MinMarketCapCr:    100,
		MinDailyValueLakh: 10,
	}
}

func TestEvaluate(t *testing.T) {
	samples := map[string]contracts.MarketSample{
		"BIGLIQUID":  {Symbol: "BIGLIQUID", MarketCapCr: 500, AvgDailyValueLakh: 50},
		"SMALLCAP":   {Symbol: "SMALLCAP", MarketCapCr: 50, AvgDailyValueLakh: 50},
		"ILLIQUID":   {Symbol: "ILLIQUID", MarketCapCr: 500, AvgDailyValueLakh: 5},
		"ATBOUNDARY": {Symbol: "ATBOUNDARY", MarketCapCr: 100, AvgDailyValueLakh: 10},
	}
	symbols := []string{"BIGLIQUID", "SMALLCAP", "ILLIQUID", "ATBOUNDARY", "NODATA"}

	result := NewEvaluator(logger.NewNop()).Evaluate(symbols, samples, testCriteria())

	// Thresholds are inclusive; unsampled symbols are kept
	assert.Equal(t, []string{"ATBOUNDARY", "BIGLIQUID", "NODATA"}, result)
}

func TestEvaluate_AllIndeterminateIncluded(t *testing.T) {
	symbols := []string{"C", "A", "B"}

	result := NewEvaluator(logger.NewNop()).Evaluate(symbols, map[string]contracts.MarketSample{}, testCriteria())

	// No market data at all: every symbol survives, sorted
	assert.Equal(t, []string{"A", "B", "C"}, result)
}

func TestEvaluate_EmptyUniverse(t *testing.T) {
	result := NewEvaluator(logger.NewNop()).Evaluate(nil, map[string]contracts.MarketSample{}, testCriteria())
	assert.Empty(t, result)
}

func TestEvaluate_FailingSampledSymbolExcluded(t *testing.T) {
	samples := map[string]contracts.MarketSample{
		"FAILS": {Symbol: "FAILS", MarketCapCr: 1, AvgDailyValueLakh: 1},
	}

	result := NewEvaluator(logger.NewNop()).Evaluate([]string{"FAILS"}, samples, testCriteria())

	// A sampled symbol below threshold is dropped even though an
	// unsampled one would have been kept
	assert.Empty(t, result)
}

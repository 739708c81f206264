package universe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

type fakeProvider struct {
	history     map[string][]contracts.Bar
	historyErr  error
	meta        map[string]*contracts.SymbolMeta
	metaErr     map[string]error
	historyCall int
}

func (f *fakeProvider) BulkHistory(ctx context.Context, symbols []string, trailingDays int) (map[string][]contracts.Bar, error) {
	f.historyCall++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	result := make(map[string][]contracts.Bar)
	for _, s := range symbols {
		if bars, ok := f.history[s]; ok {
			result[s] = bars
		}
	}
	return result, nil
}

func (f *fakeProvider) Metadata(ctx context.Context, symbol string) (*contracts.SymbolMeta, error) {
	if err, ok := f.metaErr[symbol]; ok {
		return nil, err
	}
	if meta, ok := f.meta[symbol]; ok {
		return meta, nil
	}
	return &contracts.SymbolMeta{Symbol: symbol}, nil
}

func testBars(close float64, volume int64, n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = contracts.Bar{Date: base.AddDate(0, 0, i), Close: close, Volume: volume}
	}
	return bars
}

func capOf(rupees float64) *float64 {
	return &rupees
}

func newTestSampler(provider contracts.MarketDataProvider) *Sampler {
	return NewSampler(provider, logger.NewNop(), WithDelays(0, 0))
}

func TestSample_ComputesDerivedFigures(t *testing.T) {
	provider := &fakeProvider{
		// close 100 x volume 50000 = 5,000,000 rupees/day = 50 lakh
		history: map[string][]contracts.Bar{
			"RELIANCE": testBars(100, 50_000, 5),
		},
		meta: map[string]*contracts.SymbolMeta{
			// 2,000 crore market cap
			"RELIANCE": {Symbol: "RELIANCE", MarketCap: capOf(2_000 * contracts.RupeesPerCrore)},
		},
	}

	samples, err := newTestSampler(provider).Sample(context.Background(), []string{"RELIANCE"}, 50, 5)
	require.NoError(t, err)
	require.Contains(t, samples, "RELIANCE")

	s := samples["RELIANCE"]
	assert.InDelta(t, 2_000, s.MarketCapCr, 0.0001)
	assert.InDelta(t, 50, s.AvgDailyValueLakh, 0.0001)
}

func TestSample_OmitsSymbolsWithoutData(t *testing.T) {
	provider := &fakeProvider{
		history: map[string][]contracts.Bar{
			"HASDATA":   testBars(100, 1_000, 5),
			"ZEROVOL":   testBars(100, 0, 5),
			"NOCAP":     testBars(100, 1_000, 5),
			"METAFAIL":  testBars(100, 1_000, 5),
			"NEGCAP":    testBars(100, 1_000, 5),
		},
		meta: map[string]*contracts.SymbolMeta{
			"HASDATA": {Symbol: "HASDATA", MarketCap: capOf(500 * contracts.RupeesPerCrore)},
			"NOCAP":   {Symbol: "NOCAP"},
			"NEGCAP":  {Symbol: "NEGCAP", MarketCap: capOf(-1)},
		},
		metaErr: map[string]error{
			"METAFAIL": errors.New("timeout"),
		},
	}

	symbols := []string{"HASDATA", "NOHISTORY", "ZEROVOL", "NOCAP", "METAFAIL", "NEGCAP"}
	samples, err := newTestSampler(provider).Sample(context.Background(), symbols, 50, 5)
	require.NoError(t, err)

	// Only the fully-populated symbol appears; everything else is
	// omitted, never present with partial fields
	assert.Len(t, samples, 1)
	assert.Contains(t, samples, "HASDATA")
}

func TestSample_TruncatesToSampleSize(t *testing.T) {
	provider := &fakeProvider{
		history: map[string][]contracts.Bar{
			"A": testBars(10, 100, 5),
			"B": testBars(10, 100, 5),
			"C": testBars(10, 100, 5),
		},
		meta: map[string]*contracts.SymbolMeta{
			"A": {Symbol: "A", MarketCap: capOf(1e9)},
			"B": {Symbol: "B", MarketCap: capOf(1e9)},
			"C": {Symbol: "C", MarketCap: capOf(1e9)},
		},
	}

	samples, err := newTestSampler(provider).Sample(context.Background(), []string{"A", "B", "C"}, 2, 5)
	require.NoError(t, err)

	assert.Len(t, samples, 2)
	assert.Contains(t, samples, "A")
	assert.Contains(t, samples, "B")
	assert.NotContains(t, samples, "C")
}

func TestSample_BulkFailureYieldsEmptyMap(t *testing.T) {
	provider := &fakeProvider{historyErr: errors.New("provider down")}

	samples, err := newTestSampler(provider).Sample(context.Background(), []string{"A", "B"}, 50, 5)

	// Whole-batch failure is absorbed: every symbol indeterminate
	require.NoError(t, err)
	assert.NotNil(t, samples)
	assert.Empty(t, samples)
}

func TestSample_EmptyInput(t *testing.T) {
	provider := &fakeProvider{}

	samples, err := newTestSampler(provider).Sample(context.Background(), nil, 50, 5)
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Zero(t, provider.historyCall)
}

func TestAverageTradedValue_SkipsZeroRows(t *testing.T) {
	bars := []contracts.Bar{
		{Close: 100, Volume: 1000},
		{Close: 0, Volume: 1000},
		{Close: 200, Volume: 0},
		{Close: 300, Volume: 1000},
	}

	// mean of 100k and 300k
	assert.InDelta(t, 200_000, averageTradedValue(bars), 0.0001)
}

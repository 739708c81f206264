package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityavk/nsescreener/internal/contracts"
)

func barsWithCloses(closes ...float64) []contracts.Bar {
	bars := make([]contracts.Bar, len(closes))
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := barsWithCloses(10, 20, 30, 40)

	assert.InDelta(t, 35.0, SMA(bars, 2), 0.0001)
	assert.InDelta(t, 25.0, SMA(bars, 4), 0.0001)

	// Insufficient history or bad period yields zero
	assert.Zero(t, SMA(bars, 5))
	assert.Zero(t, SMA(bars, 0))
	assert.Zero(t, SMA(nil, 3))
}

func TestScanAboveSMA(t *testing.T) {
	barsBySymbol := map[string][]contracts.Bar{
		// close 30 vs sma 20: 50% above
		"STRONG": barsWithCloses(10, 20, 30),
		// close 21 vs sma 20: 5% above
		"MILD": barsWithCloses(19, 20, 21),
		// close below sma, excluded
		"WEAK": barsWithCloses(30, 20, 10),
		// too little history, skipped
		"NEWLIST": barsWithCloses(100),
	}

	results := ScanAboveSMA(barsBySymbol, 3)
	require.Len(t, results, 2)

	assert.Equal(t, "STRONG", results[0].Symbol)
	assert.InDelta(t, 50.0, results[0].PctAboveSMA, 0.0001)
	assert.Equal(t, "MILD", results[1].Symbol)
	assert.InDelta(t, 5.0, results[1].PctAboveSMA, 0.0001)
}

func TestScanAboveSMA_ExcludesCloseEqualToSMA(t *testing.T) {
	barsBySymbol := map[string][]contracts.Bar{
		"FLAT": barsWithCloses(20, 20, 20),
	}

	results := ScanAboveSMA(barsBySymbol, 3)
	assert.Empty(t, results)
}

func TestScanNearSMA(t *testing.T) {
	barsBySymbol := map[string][]contracts.Bar{
		// sma(100,100,102)=100.67; prev close 100 <= prev sma 100,
		// today above: fresh breakout at +1.3%
		"FRESH": barsWithCloses(100, 100, 100, 102),
		// above on both days: holding
		"HOLDING": barsWithCloses(100, 101, 102, 103),
		// close under the average but inside the band
		"UNDER": barsWithCloses(100, 100, 100, 98),
		// well above the average, outside the default band
		"FAR": barsWithCloses(100, 100, 100, 120),
		// too little history, skipped
		"NEWLIST": barsWithCloses(100),
	}

	results := ScanNearSMA(barsBySymbol, 3, 0)
	require.Len(t, results, 3)

	// Fresh breakouts lead, then holding, then below
	assert.Equal(t, "FRESH", results[0].Symbol)
	assert.Equal(t, StatusFreshBreakout, results[0].Status)
	assert.Positive(t, results[0].PctFromSMA)

	assert.Equal(t, "HOLDING", results[1].Symbol)
	assert.Equal(t, StatusHoldingAbove, results[1].Status)

	assert.Equal(t, "UNDER", results[2].Symbol)
	assert.Equal(t, StatusBelowSMA, results[2].Status)
	assert.Negative(t, results[2].PctFromSMA)
}

func TestScanNearSMA_DistanceBand(t *testing.T) {
	barsBySymbol := map[string][]contracts.Bar{
		"NEAR": barsWithCloses(100, 100, 100, 101),
		"EDGE": barsWithCloses(100, 100, 100, 109),
	}

	// Tight band keeps only the close within 2%
	results := ScanNearSMA(barsBySymbol, 3, 2.0)
	require.Len(t, results, 1)
	assert.Equal(t, "NEAR", results[0].Symbol)
}

func TestScanNearSMA_HoldingWithoutPriorHistory(t *testing.T) {
	// Exactly period bars: no previous average to compare against, an
	// above close cannot be called fresh
	barsBySymbol := map[string][]contracts.Bar{
		"X": barsWithCloses(100, 100, 102),
	}

	results := ScanNearSMA(barsBySymbol, 3, 0)
	require.Len(t, results, 1)
	assert.Equal(t, StatusHoldingAbove, results[0].Status)
}

package analysis

import (
	"sort"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// DefaultSMAPeriod is the moving-average window for trend scans
const DefaultSMAPeriod = 20

// SMAResult is one symbol trading above its moving average
type SMAResult struct {
	Symbol      string  `json:"symbol"`
	Close       float64 `json:"close"`
	SMA         float64 `json:"sma"`
	PctAboveSMA float64 `json:"pct_above_sma"`
}

// SMA computes the simple moving average of the last period closes.
// Returns 0 when fewer than period bars are available.
func SMA(bars []contracts.Bar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close
	}
	return sum / float64(period)
}

// ScanAboveSMA returns the symbols whose latest close is above their
// period-day moving average, sorted by percent above descending.
// Symbols with insufficient history are skipped.
func ScanAboveSMA(barsBySymbol map[string][]contracts.Bar, period int) []SMAResult {
	if period <= 0 {
		period = DefaultSMAPeriod
	}

	results := make([]SMAResult, 0, len(barsBySymbol))
	for symbol, bars := range barsBySymbol {
		sma := SMA(bars, period)
		if sma == 0 {
			continue
		}

		latest := bars[len(bars)-1].Close
		if latest <= sma {
			continue
		}

		results = append(results, SMAResult{
			Symbol:      symbol,
			Close:       latest,
			SMA:         sma,
			PctAboveSMA: (latest - sma) / sma * 100,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].PctAboveSMA != results[j].PctAboveSMA {
			return results[i].PctAboveSMA > results[j].PctAboveSMA
		}
		return results[i].Symbol < results[j].Symbol
	})

	return results
}

// DefaultNearSMADistance is the widest percent distance from the moving
// average that still counts as "near" for the watchlist scan
const DefaultNearSMADistance = 5.0

// Near-SMA breakout statuses, ordered from most to least actionable
const (
	StatusFreshBreakout = "fresh_breakout_above"
	StatusHoldingAbove  = "holding_above"
	StatusBelowSMA      = "below_sma"
)

// NearSMAResult is one symbol trading close to its moving average.
// PctFromSMA is signed: negative means below the average.
type NearSMAResult struct {
	Symbol     string  `json:"symbol"`
	Close      float64 `json:"close"`
	SMA        float64 `json:"sma"`
	PctFromSMA float64 `json:"pct_from_sma"`
	Status     string  `json:"status"`
	TradeDate  string  `json:"trade_date"`
}

// ScanNearSMA returns the symbols whose latest close is within
// maxDistancePct of their period-day moving average, on either side.
// A close above the average whose previous close was at or below the
// previous average is a fresh breakout; above on both days is holding;
// otherwise the symbol sits below. Fresh breakouts sort first, then by
// absolute distance ascending so the tightest setups lead each group.
func ScanNearSMA(barsBySymbol map[string][]contracts.Bar, period int, maxDistancePct float64) []NearSMAResult {
	if period <= 0 {
		period = DefaultSMAPeriod
	}
	if maxDistancePct <= 0 {
		maxDistancePct = DefaultNearSMADistance
	}

	results := make([]NearSMAResult, 0)
	for symbol, bars := range barsBySymbol {
		sma := SMA(bars, period)
		if sma == 0 {
			continue
		}

		latest := bars[len(bars)-1]
		pct := (latest.Close - sma) / sma * 100
		if abs(pct) > maxDistancePct {
			continue
		}

		results = append(results, NearSMAResult{
			Symbol:     symbol,
			Close:      latest.Close,
			SMA:        sma,
			PctFromSMA: pct,
			Status:     classifyNearSMA(bars, period, latest.Close, sma),
			TradeDate:  latest.Date.Format("2006-01-02"),
		})
	}

	rank := map[string]int{StatusFreshBreakout: 0, StatusHoldingAbove: 1, StatusBelowSMA: 2}
	sort.Slice(results, func(i, j int) bool {
		if rank[results[i].Status] != rank[results[j].Status] {
			return rank[results[i].Status] < rank[results[j].Status]
		}
		di, dj := abs(results[i].PctFromSMA), abs(results[j].PctFromSMA)
		if di != dj {
			return di < dj
		}
		return results[i].Symbol < results[j].Symbol
	})

	return results
}

// classifyNearSMA labels a symbol's position relative to its moving
// average. Freshness needs period+1 bars so the previous session's
// average can be computed; with exactly period bars an above close
// counts as holding.
func classifyNearSMA(bars []contracts.Bar, period int, close, sma float64) string {
	if close <= sma {
		return StatusBelowSMA
	}

	prev := bars[:len(bars)-1]
	prevSMA := SMA(prev, period)
	if prevSMA > 0 && prev[len(prev)-1].Close <= prevSMA {
		return StatusFreshBreakout
	}
	return StatusHoldingAbove
}

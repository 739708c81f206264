package analysis

import (
	"sort"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// PatternTolerance is the relative tolerance for treating two prices
// as equal on a daily bar
const PatternTolerance = 0.001

// Pattern kinds for the open-extreme scan
const (
	PatternOpenHigh = "open_high" // opened at the high, sellers in control
	PatternOpenLow  = "open_low"  // opened at the low, buyers in control
)

// PatternResult is one symbol whose latest bar opened at a session
// extreme
type PatternResult struct {
	Symbol    string  `json:"symbol"`
	Pattern   string  `json:"pattern"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	MovePct   float64 `json:"move_pct"`
	Volume    int64   `json:"volume"`
	TradeDate string  `json:"trade_date"`
}

// ScanOpenExtremes finds symbols whose most recent bar opened at its
// high or at its low, within tolerance. Results are sorted by absolute
// move percent descending so the strongest candidates come first.
func ScanOpenExtremes(barsBySymbol map[string][]contracts.Bar) []PatternResult {
	results := make([]PatternResult, 0)

	for symbol, bars := range barsBySymbol {
		if len(bars) == 0 {
			continue
		}
		bar := bars[len(bars)-1]
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 {
			continue
		}

		pattern := classifyOpenExtreme(bar)
		if pattern == "" {
			continue
		}

		results = append(results, PatternResult{
			Symbol:    symbol,
			Pattern:   pattern,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			MovePct:   (bar.Close - bar.Open) / bar.Open * 100,
			Volume:    bar.Volume,
			TradeDate: bar.Date.Format("2006-01-02"),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		mi, mj := abs(results[i].MovePct), abs(results[j].MovePct)
		if mi != mj {
			return mi > mj
		}
		return results[i].Symbol < results[j].Symbol
	})

	return results
}

// BreakoutResult is one symbol confirming an open=high setup: the
// previous session opened at its high and the latest close cleared
// that high
type BreakoutResult struct {
	Symbol        string  `json:"symbol"`
	YesterdayDate string  `json:"yesterday_date"`
	YesterdayOpen float64 `json:"yesterday_open"`
	YesterdayHigh float64 `json:"yesterday_high"`
	TradeDate     string  `json:"trade_date"`
	Close         float64 `json:"close"`
	BreakoutPct   float64 `json:"breakout_pct"`
}

// ScanOpenHighBreakouts finds two-day confirmations: yesterday's bar
// opened at its high (within tolerance) and today's close is above
// yesterday's high. Sorted by breakout percent descending. Symbols with
// fewer than two bars are skipped.
func ScanOpenHighBreakouts(barsBySymbol map[string][]contracts.Bar) []BreakoutResult {
	results := make([]BreakoutResult, 0)

	for symbol, bars := range barsBySymbol {
		if len(bars) < 2 {
			continue
		}
		yesterday := bars[len(bars)-2]
		today := bars[len(bars)-1]

		if yesterday.Open <= 0 || yesterday.High <= 0 {
			continue
		}
		if !withinTolerance(yesterday.Open, yesterday.High) {
			continue
		}
		if today.Close <= yesterday.High {
			continue
		}

		results = append(results, BreakoutResult{
			Symbol:        symbol,
			YesterdayDate: yesterday.Date.Format("2006-01-02"),
			YesterdayOpen: yesterday.Open,
			YesterdayHigh: yesterday.High,
			TradeDate:     today.Date.Format("2006-01-02"),
			Close:         today.Close,
			BreakoutPct:   (today.Close - yesterday.High) / yesterday.High * 100,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].BreakoutPct != results[j].BreakoutPct {
			return results[i].BreakoutPct > results[j].BreakoutPct
		}
		return results[i].Symbol < results[j].Symbol
	})

	return results
}

// classifyOpenExtreme reports which session extreme the bar opened at,
// or empty when neither. A bar that opened at both (no range) is not a
// signal.
func classifyOpenExtreme(bar contracts.Bar) string {
	openHigh := withinTolerance(bar.Open, bar.High)
	openLow := withinTolerance(bar.Open, bar.Low)

	switch {
	case openHigh && openLow:
		return ""
	case openHigh:
		return PatternOpenHigh
	case openLow:
		return PatternOpenLow
	default:
		return ""
	}
}

// withinTolerance reports whether two prices differ by at most the
// pattern tolerance relative to the larger one
func withinTolerance(a, b float64) bool {
	larger := a
	if b > larger {
		larger = b
	}
	if larger == 0 {
		return false
	}
	return abs(a-b)/larger <= PatternTolerance
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

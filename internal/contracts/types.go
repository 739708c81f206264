package contracts

import "time"

// Symbol is one entry in the tradable-stocks master list: an NSE ticker
// plus its series tag (EQ, BE, BZ, ...). Loaded from the symbol store,
// never mutated afterwards.
type Symbol struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
	Series string `json:"series"`
}

// MarketSample holds the derived market figures for one sampled symbol.
// A symbol only appears in a sample map when both figures could be
// computed; absence from the map is the "no data" signal.
type MarketSample struct {
	Symbol            string  `json:"symbol"`
	MarketCapCr       float64 `json:"market_cap_cr"`        // market capitalization in crores
	AvgDailyValueLakh float64 `json:"avg_daily_value_lakh"` // mean(close*volume) over the window, in lakhs
}

// FilterCriteria is the immutable configuration for one filtering run.
type FilterCriteria struct {
	ExcludedSeries    []string `json:"excluded_series"`
	MinMarketCapCr    float64  `json:"min_market_cap_cr"`
	MinDailyValueLakh float64  `json:"min_daily_value_lakh"`
}

// Excludes reports whether the given series tag is filtered out
func (c FilterCriteria) Excludes(series string) bool {
	for _, s := range c.ExcludedSeries {
		if s == series {
			return true
		}
	}
	return false
}

// CacheEntry is the persisted daily master list. count always equals
// len(symbols); readers must never observe a mismatch.
type CacheEntry struct {
	Date            string         `json:"date"` // resolution date, YYYY-MM-DD
	ResolvedAt      time.Time      `json:"timestamp"`
	Symbols         []string       `json:"symbols"`
	Count           int            `json:"count"`
	Criteria        FilterCriteria `json:"filter_criteria"`
	DurationSeconds float64        `json:"processing_time_seconds"`
	Version         string         `json:"cache_version"`
}

// CacheInfo describes cache state without exposing the symbol list.
// Used for status displays only.
type CacheInfo struct {
	Exists          bool    `json:"exists"`
	Current         bool    `json:"current"`
	Date            string  `json:"date,omitempty"`
	Count           int     `json:"count"`
	DurationSeconds float64 `json:"processing_time_seconds,omitempty"`
	Stale           bool    `json:"is_stale"`
	AgeDays         int     `json:"age_days"`
}

// Bar is one daily OHLCV row
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TradedValue returns close*volume for the bar
func (b Bar) TradedValue() float64 {
	return b.Close * float64(b.Volume)
}

// SymbolMeta holds per-symbol valuation figures from the market data
// provider. MarketCap is nil when the provider returned nothing, which
// is not the same as zero.
type SymbolMeta struct {
	Symbol    string   `json:"symbol"`
	MarketCap *float64 `json:"market_cap,omitempty"` // rupees
}

// Monetary unit conversions. NSE figures are quoted in rupees; the
// screener works in crores (1e7) and lakhs (1e5).
const (
	RupeesPerCrore = 10_000_000
	RupeesPerLakh  = 100_000
)

package contracts

import (
	"context"
	"time"
)

// SymbolStore provides the full symbol universe with series tags.
// Backed by the tradable_stocks table; faked in tests.
type SymbolStore interface {
	ListSymbols(ctx context.Context) ([]Symbol, error)
}

// MarketDataProvider retrieves trading history and valuation figures
// from an external source.
type MarketDataProvider interface {
	// BulkHistory fetches up to trailingDays of daily bars for each
	// symbol. Symbols that fail or have no data are simply absent from
	// the result; an individual failure never fails the call.
	BulkHistory(ctx context.Context, symbols []string, trailingDays int) (map[string][]Bar, error)

	// Metadata fetches per-symbol valuation figures
	Metadata(ctx context.Context, symbol string) (*SymbolMeta, error)
}

// CacheStore persists the resolved daily master list. Entries are
// date-stamped: an entry written on day D is a miss on day D+1
// regardless of hours elapsed.
type CacheStore interface {
	// Read returns nil on a cold cache and, unless allowStale is set,
	// nil for an entry whose date is not today.
	Read(ctx context.Context, allowStale bool) (*CacheEntry, error)

	// Write persists a new entry stamped with today's date, replacing
	// any previous one. The write is atomic from a reader's view.
	Write(ctx context.Context, symbols []string, criteria FilterCriteria, duration time.Duration) error

	// Clear deletes the persisted entry. Clearing an absent cache is
	// not an error.
	Clear(ctx context.Context) error

	// Info reports existence/staleness/age/count without exposing the
	// symbol list.
	Info(ctx context.Context) (*CacheInfo, error)
}

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

// memCache is an in-memory CacheStore for orchestrator tests
type memCache struct {
	entry    *contracts.CacheEntry
	writeErr error
	writes   int
}

func (m *memCache) Read(ctx context.Context, allowStale bool) (*contracts.CacheEntry, error) {
	return m.entry, nil
}

func (m *memCache) Write(ctx context.Context, symbols []string, criteria contracts.FilterCriteria, duration time.Duration) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.entry = &contracts.CacheEntry{
		Date:            time.Now().Format("2006-01-02"),
		ResolvedAt:      time.Now(),
		Symbols:         symbols,
		Count:           len(symbols),
		Criteria:        criteria,
		DurationSeconds: duration.Seconds(),
		Version:         "1.0",
	}
	return nil
}

func (m *memCache) Clear(ctx context.Context) error {
	m.entry = nil
	return nil
}

func (m *memCache) Info(ctx context.Context) (*contracts.CacheInfo, error) {
	if m.entry == nil {
		return &contracts.CacheInfo{}, nil
	}
	return &contracts.CacheInfo{Exists: true, Current: true, Count: m.entry.Count}, nil
}

func newTestOrchestrator(store contracts.SymbolStore, provider contracts.MarketDataProvider, cache contracts.CacheStore) *Orchestrator {
	log := logger.NewNop()
	return NewOrchestrator(
		NewSeriesFilter(store, log),
		NewSampler(provider, log, WithDelays(0, 0)),
		NewEvaluator(log),
		cache,
		Config{Criteria: testCriteria()},
		log,
	)
}

func TestGetFilteredUniverse_ComputesAndCaches(t *testing.T) {
	store := &fakeSymbolStore{symbols: []contracts.Symbol{
		{Ticker: "RELIANCE", Series: "EQ"},
		{Ticker: "SKIPME", Series: "BZ"},
		{Ticker: "NODATA", Series: "EQ"},
	}}
	provider := &fakeProvider{
		history: map[string][]contracts.Bar{
			"RELIANCE": testBars(100, 50_000, 5),
		},
		meta: map[string]*contracts.SymbolMeta{
			"RELIANCE": {Symbol: "RELIANCE", MarketCap: capOf(2_000 * contracts.RupeesPerCrore)},
		},
	}
	cache := &memCache{}

	orch := newTestOrchestrator(store, provider, cache)

	symbols, err := orch.GetFilteredUniverse(context.Background(), false)
	require.NoError(t, err)

	// RELIANCE passes on figures, NODATA is conservatively included,
	// SKIPME never reaches sampling
	assert.Equal(t, []string{"NODATA", "RELIANCE"}, symbols)
	assert.Equal(t, 1, cache.writes)

	status := orch.Status()
	assert.Equal(t, 2, status.Count)
	assert.Empty(t, status.LastError)
}

func TestGetFilteredUniverse_ServesCacheUnchanged(t *testing.T) {
	cached := []string{"CACHED1", "CACHED2"}
	cache := &memCache{entry: &contracts.CacheEntry{
		Date:       time.Now().Format("2006-01-02"),
		ResolvedAt: time.Now(),
		Symbols:    cached,
		Count:      2,
		Version:    "1.0",
	}}
	provider := &fakeProvider{}

	orch := newTestOrchestrator(&fakeSymbolStore{}, provider, cache)

	symbols, err := orch.GetFilteredUniverse(context.Background(), false)
	require.NoError(t, err)

	// Cached list returned verbatim, pipeline never runs
	assert.Equal(t, cached, symbols)
	assert.Zero(t, provider.historyCall)
	assert.Zero(t, cache.writes)
	assert.Equal(t, StateCached, orch.Status().State)
}

func TestGetFilteredUniverse_Idempotent(t *testing.T) {
	store := &fakeSymbolStore{symbols: []contracts.Symbol{{Ticker: "A", Series: "EQ"}}}
	cache := &memCache{}
	provider := &fakeProvider{}

	orch := newTestOrchestrator(store, provider, cache)
	ctx := context.Background()

	first, err := orch.GetFilteredUniverse(ctx, false)
	require.NoError(t, err)

	second, err := orch.GetFilteredUniverse(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.writes)
}

func TestRefresh_BypassesWarmCache(t *testing.T) {
	store := &fakeSymbolStore{symbols: []contracts.Symbol{{Ticker: "FRESH", Series: "EQ"}}}
	cache := &memCache{entry: &contracts.CacheEntry{
		Date:    time.Now().Format("2006-01-02"),
		Symbols: []string{"STALEDATA"},
		Count:   1,
		Version: "1.0",
	}}

	orch := newTestOrchestrator(store, &fakeProvider{}, cache)

	symbols, err := orch.Refresh(context.Background())
	require.NoError(t, err)

	// Cache overwritten even though it was current
	assert.Equal(t, []string{"FRESH"}, symbols)
	assert.Equal(t, 1, cache.writes)
	assert.Equal(t, []string{"FRESH"}, cache.entry.Symbols)
}

func TestGetFilteredUniverse_SeriesFilterFailure(t *testing.T) {
	store := &fakeSymbolStore{err: errors.New("db down")}
	cache := &memCache{}

	orch := newTestOrchestrator(store, &fakeProvider{}, cache)

	symbols, err := orch.GetFilteredUniverse(context.Background(), false)
	require.NoError(t, err)

	// Failure passes through as an empty universe, which is cached; the
	// error is observable via status
	assert.Empty(t, symbols)
	assert.Equal(t, 1, cache.writes)
	assert.Contains(t, orch.Status().LastError, "db down")
}

func TestGetFilteredUniverse_CacheWriteFailureSurfaced(t *testing.T) {
	store := &fakeSymbolStore{symbols: []contracts.Symbol{{Ticker: "A", Series: "EQ"}}}
	cache := &memCache{writeErr: errors.New("disk full")}

	orch := newTestOrchestrator(store, &fakeProvider{}, cache)

	_, err := orch.GetFilteredUniverse(context.Background(), false)
	assert.Error(t, err)
}

func TestOrchestrator_ProgressNotifications(t *testing.T) {
	store := &fakeSymbolStore{symbols: []contracts.Symbol{{Ticker: "A", Series: "EQ"}}}
	orch := newTestOrchestrator(store, &fakeProvider{}, &memCache{})

	var stages []string
	orch.OnProgress(func(stage string, done, total int) {
		stages = append(stages, stage)
	})

	_, err := orch.GetFilteredUniverse(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"series_filter", "sampling", "sampling", "evaluating", "done"}, stages)
}

func TestOrchestrator_ClearDelegates(t *testing.T) {
	cache := &memCache{entry: &contracts.CacheEntry{Symbols: []string{"A"}, Count: 1}}
	orch := newTestOrchestrator(&fakeSymbolStore{}, &fakeProvider{}, cache)

	require.NoError(t, orch.Clear(context.Background()))
	assert.Nil(t, cache.entry)
}

package universe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

func newTestCache(t *testing.T, now func() time.Time) *FileCacheStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	opts := []FileCacheOption{}
	if now != nil {
		opts = append(opts, WithClock(now))
	}
	return NewFileCacheStore(path, logger.NewNop(), opts...)
}

func TestFileCache_WriteThenRead(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	symbols := []string{"INFY", "RELIANCE", "TCS"}
	require.NoError(t, cache.Write(ctx, symbols, testCriteria(), 1500*time.Millisecond))

	entry, err := cache.Read(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, symbols, entry.Symbols)
	assert.Equal(t, len(symbols), entry.Count)
	assert.Equal(t, "1.0", entry.Version)
	assert.InDelta(t, 1.5, entry.DurationSeconds, 0.0001)
	assert.Equal(t, time.Now().Format("2006-01-02"), entry.Date)
}

func TestFileCache_ReadAbsent(t *testing.T) {
	cache := newTestCache(t, nil)

	entry, err := cache.Read(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileCache_DateRollover(t *testing.T) {
	current := time.Date(2026, 8, 28, 23, 59, 0, 0, time.Local)
	cache := newTestCache(t, func() time.Time { return current })
	ctx := context.Background()

	require.NoError(t, cache.Write(ctx, []string{"TCS"}, testCriteria(), time.Second))

	// Still the same calendar day: hit
	entry, err := cache.Read(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, entry)

	// Two minutes later it is the next day: miss despite being minutes old
	current = current.Add(2 * time.Minute)
	entry, err = cache.Read(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, entry)

	// allowStale still surfaces the entry
	entry, err = cache.Read(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "2026-08-28", entry.Date)
}

func TestFileCache_CorruptTreatedAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"missing date", `{"symbols":["A"],"count":1}`},
		{"bad date format", `{"date":"28-08-2026","symbols":["A"],"count":1}`},
		{"missing symbols", `{"date":"2026-08-28","count":0}`},
		{"count mismatch", `{"date":"2026-08-28","symbols":["A","B"],"count":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newTestCache(t, nil)
			require.NoError(t, os.WriteFile(cache.path, []byte(tt.data), 0o644))

			entry, err := cache.Read(context.Background(), false)
			require.NoError(t, err)
			assert.Nil(t, entry)
		})
	}
}

func TestFileCache_CountAlwaysMatchesSymbols(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	// A nil symbol slice is persisted as an empty list, count zero
	require.NoError(t, cache.Write(ctx, nil, testCriteria(), 0))

	data, err := os.ReadFile(cache.path)
	require.NoError(t, err)

	var entry contracts.CacheEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.NotNil(t, entry.Symbols)
	assert.Empty(t, entry.Symbols)
	assert.Zero(t, entry.Count)
}

func TestFileCache_WriteReplacesExisting(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Write(ctx, []string{"OLD1", "OLD2"}, testCriteria(), 0))
	require.NoError(t, cache.Write(ctx, []string{"NEW"}, testCriteria(), 0))

	entry, err := cache.Read(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"NEW"}, entry.Symbols)
	assert.Equal(t, 1, entry.Count)

	// No temp files left behind
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(cache.path), "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileCache_ClearIdempotent(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Write(ctx, []string{"A"}, testCriteria(), 0))
	require.NoError(t, cache.Clear(ctx))
	require.NoError(t, cache.Clear(ctx))

	entry, err := cache.Read(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileCache_Info(t *testing.T) {
	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)
	cache := newTestCache(t, func() time.Time { return current })
	ctx := context.Background()

	info, err := cache.Info(ctx)
	require.NoError(t, err)
	assert.False(t, info.Exists)

	require.NoError(t, cache.Write(ctx, []string{"A", "B"}, testCriteria(), 2*time.Second))

	info, err = cache.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.True(t, info.Current)
	assert.False(t, info.Stale)
	assert.Equal(t, 2, info.Count)
	assert.Zero(t, info.AgeDays)

	current = current.AddDate(0, 0, 3)
	info, err = cache.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.False(t, info.Current)
	assert.True(t, info.Stale)
	assert.Equal(t, 3, info.AgeDays)
}

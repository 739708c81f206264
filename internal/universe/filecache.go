package universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

const (
	cacheVersion = "1.0"
	dateLayout   = "2006-01-02"
)

// FileCacheStore persists the daily master list as a single JSON file.
// Staleness is keyed to the calendar date, not a TTL: an entry written
// on day D becomes a miss at local midnight regardless of hours
// elapsed. Writes go through a temp file plus rename so a concurrent
// reader never observes a torn entry; if multiple processes race,
// last-writer-wins.
type FileCacheStore struct {
	path   string
	logger *logger.Logger
	now    func() time.Time
}

// FileCacheOption configures a FileCacheStore
type FileCacheOption func(*FileCacheStore)

// WithClock overrides the time source. Tests use it to simulate date
// rollover.
func WithClock(now func() time.Time) FileCacheOption {
	return func(s *FileCacheStore) {
		s.now = now
	}
}

// NewFileCacheStore creates a file-backed cache store
func NewFileCacheStore(path string, log *logger.Logger, opts ...FileCacheOption) *FileCacheStore {
	s := &FileCacheStore{
		path:   path,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today returns the current local date string
func (s *FileCacheStore) today() string {
	return s.now().Format(dateLayout)
}

// Read loads the cache entry. Returns (nil, nil) when the file is
// absent, corrupt, or date-stamped with a day other than today (unless
// allowStale). Corruption is logged but never escalated; it is
// indistinguishable from cache-absent to callers.
func (s *FileCacheStore) Read(ctx context.Context, allowStale bool) (*contracts.CacheEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("No cache file found")
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		s.logger.WithError(err).Warn("Cache entry corrupt, treating as absent")
		return nil, nil
	}

	if !allowStale && entry.Date != s.today() {
		s.logger.WithFields(map[string]interface{}{
			"cached_date": entry.Date,
			"today":       s.today(),
		}).Info("Cache is stale")
		return nil, nil
	}

	s.logger.WithFields(map[string]interface{}{
		"count": entry.Count,
		"date":  entry.Date,
	}).Debug("Loaded symbols from cache")

	return entry, nil
}

// Write persists a new entry stamped with today's date, replacing any
// previous one
func (s *FileCacheStore) Write(ctx context.Context, symbols []string, criteria contracts.FilterCriteria, duration time.Duration) error {
	if symbols == nil {
		symbols = []string{}
	}

	entry := contracts.CacheEntry{
		Date:            s.today(),
		ResolvedAt:      s.now(),
		Symbols:         symbols,
		Count:           len(symbols),
		Criteria:        criteria,
		DurationSeconds: duration.Seconds(),
		Version:         cacheVersion,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"count": entry.Count,
		"date":  entry.Date,
	}).Info("Saved filtered symbols to cache")

	return nil
}

// Clear deletes the cache file. Idempotent.
func (s *FileCacheStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	s.logger.Debug("Cache cleared")
	return nil
}

// Info reports cache state without exposing the symbol list
func (s *FileCacheStore) Info(ctx context.Context) (*contracts.CacheInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &contracts.CacheInfo{}, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return &contracts.CacheInfo{Exists: true, Stale: true}, nil
	}

	return entryInfo(entry, s.today()), nil
}

// decodeEntry parses and validates a serialized cache entry
func decodeEntry(data []byte) (*contracts.CacheEntry, error) {
	var entry contracts.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrCacheCorrupt, err)
	}

	if entry.Date == "" {
		return nil, fmt.Errorf("%w: missing date stamp", contracts.ErrCacheCorrupt)
	}
	if _, err := time.Parse(dateLayout, entry.Date); err != nil {
		return nil, fmt.Errorf("%w: bad date stamp %q", contracts.ErrCacheCorrupt, entry.Date)
	}
	if entry.Symbols == nil {
		return nil, fmt.Errorf("%w: missing symbols", contracts.ErrCacheCorrupt)
	}
	if entry.Count != len(entry.Symbols) {
		return nil, fmt.Errorf("%w: count %d does not match %d symbols", contracts.ErrCacheCorrupt, entry.Count, len(entry.Symbols))
	}

	return &entry, nil
}

// entryInfo derives CacheInfo from an entry and the current date
func entryInfo(entry *contracts.CacheEntry, today string) *contracts.CacheInfo {
	info := &contracts.CacheInfo{
		Exists:          true,
		Current:         entry.Date == today,
		Date:            entry.Date,
		Count:           entry.Count,
		DurationSeconds: entry.DurationSeconds,
		Stale:           entry.Date != today,
	}

	cachedDate, err1 := time.Parse(dateLayout, entry.Date)
	todayDate, err2 := time.Parse(dateLayout, today)
	if err1 == nil && err2 == nil {
		info.AgeDays = int(todayDate.Sub(cachedDate).Hours() / 24)
	}

	return info
}

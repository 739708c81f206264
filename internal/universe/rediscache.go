package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
	"github.com/adityavk/nsescreener/pkg/redis"
)

const redisCacheKey = "universe:master"

// RedisCacheStore persists the daily master list as a JSON blob in
// Redis. Same date-stamped semantics as FileCacheStore; the SET is
// atomic on the Redis side. Useful when several screener processes
// share one resolved universe.
type RedisCacheStore struct {
	cache  *redis.Cache
	logger *logger.Logger
	now    func() time.Time
}

// NewRedisCacheStore creates a Redis-backed cache store
func NewRedisCacheStore(cache *redis.Cache, log *logger.Logger) *RedisCacheStore {
	return &RedisCacheStore{
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// Read loads the cache entry, applying the same staleness rule as the
// file store
func (s *RedisCacheStore) Read(ctx context.Context, allowStale bool) (*contracts.CacheEntry, error) {
	var entry contracts.CacheEntry
	found, err := s.cache.Get(ctx, redisCacheKey, &entry)
	if err != nil {
		s.logger.WithError(err).Warn("Cache entry corrupt, treating as absent")
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	if entry.Date == "" || entry.Count != len(entry.Symbols) {
		s.logger.Warn("Cache entry corrupt, treating as absent")
		return nil, nil
	}

	if !allowStale && entry.Date != s.now().Format(dateLayout) {
		return nil, nil
	}

	return &entry, nil
}

// Write persists a new entry stamped with today's date
func (s *RedisCacheStore) Write(ctx context.Context, symbols []string, criteria contracts.FilterCriteria, duration time.Duration) error {
	if symbols == nil {
		symbols = []string{}
	}

	entry := contracts.CacheEntry{
		Date:            s.now().Format(dateLayout),
		ResolvedAt:      s.now(),
		Symbols:         symbols,
		Count:           len(symbols),
		Criteria:        criteria,
		DurationSeconds: duration.Seconds(),
		Version:         cacheVersion,
	}

	if err := s.cache.Set(ctx, redisCacheKey, entry, redis.TTLDaily); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	return nil
}

// Clear deletes the persisted entry. Idempotent.
func (s *RedisCacheStore) Clear(ctx context.Context) error {
	return s.cache.Delete(ctx, redisCacheKey)
}

// Info reports cache state without exposing the symbol list
func (s *RedisCacheStore) Info(ctx context.Context) (*contracts.CacheInfo, error) {
	entry, err := s.Read(ctx, true)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &contracts.CacheInfo{}, nil
	}

	return entryInfo(entry, s.now().Format(dateLayout)), nil
}

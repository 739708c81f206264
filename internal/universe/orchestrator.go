package universe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Resolution states for one filtering request
const (
	StateCached    = "cached"
	StateComputing = "computing"
)

// RunStatus describes the most recent resolution for status displays
type RunStatus struct {
	State           string    `json:"state"`
	ResolvedAt      time.Time `json:"resolved_at"`
	Count           int       `json:"count"`
	DurationSeconds float64   `json:"duration_seconds"`
	LastError       string    `json:"last_error,omitempty"`
}

// Orchestrator composes the filtering pipeline behind the date-stamped
// cache: on a hit it returns the cached list unchanged; on a miss it
// runs series filter -> market sampler -> criteria evaluator, sorts,
// caches and returns. No retries: a failed sampler batch just yields
// fewer samples, and a failed series filter yields an empty universe
// that is passed through unmodified.
type Orchestrator struct {
	seriesFilter *SeriesFilter
	sampler      *Sampler
	evaluator    *Evaluator
	cache        contracts.CacheStore
	logger       *logger.Logger

	criteria     contracts.FilterCriteria
	sampleSize   int
	trailingDays int

	mu       sync.Mutex
	lastRun  RunStatus
	progress func(stage string, done, total int)
}

// Config holds orchestrator parameters for one filtering run
type Config struct {
	Criteria     contracts.FilterCriteria
	SampleSize   int
	TrailingDays int
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(
	seriesFilter *SeriesFilter,
	sampler *Sampler,
	evaluator *Evaluator,
	cache contracts.CacheStore,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = 50
	}
	trailingDays := cfg.TrailingDays
	if trailingDays <= 0 {
		trailingDays = 5
	}

	return &Orchestrator{
		seriesFilter: seriesFilter,
		sampler:      sampler,
		evaluator:    evaluator,
		cache:        cache,
		logger:       log,
		criteria:     cfg.Criteria,
		sampleSize:   sampleSize,
		trailingDays: trailingDays,
	}
}

// OnProgress registers a callback invoked as the pipeline advances.
// Used by the dashboard's live refresh stream.
func (o *Orchestrator) OnProgress(fn func(stage string, done, total int)) {
	o.mu.Lock()
	o.progress = fn
	o.mu.Unlock()
}

func (o *Orchestrator) notify(stage string, done, total int) {
	o.mu.Lock()
	fn := o.progress
	o.mu.Unlock()
	if fn != nil {
		fn(stage, done, total)
	}
}

// GetFilteredUniverse returns the current filtered symbol list, serving
// from the cache when its date stamp is today and recomputing
// otherwise
func (o *Orchestrator) GetFilteredUniverse(ctx context.Context, forceRefresh bool) ([]string, error) {
	if !forceRefresh {
		entry, err := o.cache.Read(ctx, false)
		if err != nil {
			o.logger.WithError(err).Warn("Cache read failed, recomputing")
		}
		if entry != nil {
			o.logger.WithField("count", entry.Count).Info("Using cached filtered symbols")
			o.setLastRun(RunStatus{
				State:           StateCached,
				ResolvedAt:      entry.ResolvedAt,
				Count:           entry.Count,
				DurationSeconds: entry.DurationSeconds,
			})
			return entry.Symbols, nil
		}
	}

	return o.compute(ctx)
}

// Refresh bypasses the cache and recomputes the list, overwriting the
// entry even when the new result is identical
func (o *Orchestrator) Refresh(ctx context.Context) ([]string, error) {
	return o.GetFilteredUniverse(ctx, true)
}

// Clear removes the persisted cache entry
func (o *Orchestrator) Clear(ctx context.Context) error {
	return o.cache.Clear(ctx)
}

// CacheInfo reports the state of the backing cache
func (o *Orchestrator) CacheInfo(ctx context.Context) (*contracts.CacheInfo, error) {
	return o.cache.Info(ctx)
}

// CacheEntry returns the persisted entry even when stale, or nil on a
// cold cache. Used for history snapshots and status displays.
func (o *Orchestrator) CacheEntry(ctx context.Context) (*contracts.CacheEntry, error) {
	return o.cache.Read(ctx, true)
}

// Status returns the outcome of the most recent resolution
func (o *Orchestrator) Status() RunStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun
}

func (o *Orchestrator) setLastRun(status RunStatus) {
	o.mu.Lock()
	o.lastRun = status
	o.mu.Unlock()
}

// compute runs the full pipeline and persists the result
func (o *Orchestrator) compute(ctx context.Context) ([]string, error) {
	o.logger.Info("Computing fresh filtered symbol list")
	start := time.Now()

	status := RunStatus{State: StateComputing}

	o.notify("series_filter", 0, 0)
	candidates, err := o.seriesFilter.Filter(ctx, o.criteria.ExcludedSeries)
	if err != nil {
		// A failed symbol store query yields an empty universe; it is
		// passed through rather than raised, but recorded for status
		// displays so an empty list can be told apart from a genuinely
		// empty universe.
		o.logger.WithError(err).Warn("Series filter failed, continuing with empty universe")
		status.LastError = err.Error()
	}

	o.notify("sampling", 0, len(candidates))
	samples, err := o.sampler.Sample(ctx, candidates, o.sampleSize, o.trailingDays)
	if err != nil {
		o.logger.WithError(err).Warn("Market sampling failed")
		status.LastError = err.Error()
		samples = map[string]contracts.MarketSample{}
	}
	o.notify("sampling", len(samples), len(candidates))

	o.notify("evaluating", 0, len(candidates))
	result := o.evaluator.Evaluate(candidates, samples, o.criteria)
	sort.Strings(result)

	duration := time.Since(start)

	if err := o.cache.Write(ctx, result, o.criteria, duration); err != nil {
		// Unable to persist at all (e.g. filesystem permissions) is the
		// one condition surfaced to the caller
		return nil, err
	}

	status.ResolvedAt = time.Now()
	status.Count = len(result)
	status.DurationSeconds = duration.Seconds()
	o.setLastRun(status)

	o.notify("done", len(result), len(result))

	o.logger.WithFields(map[string]interface{}{
		"count":    len(result),
		"duration": duration,
	}).Info("Computed and cached filtered symbols")

	return result, nil
}

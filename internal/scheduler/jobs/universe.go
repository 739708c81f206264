package jobs

import (
	"context"
	"fmt"

	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// UniverseJob refreshes the filtered universe daily. Running early
// morning means interactive requests later in the day hit a warm cache.
type UniverseJob struct {
	orchestrator *universe.Orchestrator
	snapshots    *universe.Repository
	logger       *logger.Logger
}

// NewUniverseJob creates a new universe refresh job
func NewUniverseJob(orch *universe.Orchestrator, snapshots *universe.Repository, log *logger.Logger) *UniverseJob {
	return &UniverseJob{
		orchestrator: orch,
		snapshots:    snapshots,
		logger:       log,
	}
}

// Name returns the job name
func (j *UniverseJob) Name() string {
	return "universe_refresh"
}

// Schedule runs after the master list ingestion, 8:30 AM IST daily
func (j *UniverseJob) Schedule() string {
	return "0 30 8 * * *"
}

// Run recomputes the filtered universe and records a history snapshot
func (j *UniverseJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	symbols, err := j.orchestrator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	if j.snapshots != nil {
		entry, err := j.orchestrator.CacheEntry(ctx)
		if err != nil || entry == nil {
			j.logger.WithError(err).Warn("Could not read cache entry for snapshot, skipping history row")
		} else if err := j.snapshots.SaveSnapshot(ctx, entry); err != nil {
			j.logger.WithError(err).Warn("Failed to save universe snapshot")
		}
	}

	j.logger.WithField("count", len(symbols)).Info("Universe refreshed")
	return nil
}

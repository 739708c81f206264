package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/adityavk/nsescreener/internal/prices"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// retentionDays is how long daily bars are kept before pruning
const retentionDays = 90

// CleanupJob prunes daily bars older than the retention window so the
// price table stays bounded
type CleanupJob struct {
	priceRepo *prices.Repository
	logger    *logger.Logger
}

// NewCleanupJob creates a new data retention job
func NewCleanupJob(priceRepo *prices.Repository, log *logger.Logger) *CleanupJob {
	return &CleanupJob{
		priceRepo: priceRepo,
		logger:    log,
	}
}

// Name returns the job name
func (j *CleanupJob) Name() string {
	return "data_cleanup"
}

// Schedule runs weekly, Sunday 2 AM, when no market job is active
func (j *CleanupJob) Schedule() string {
	return "0 0 2 * * 0"
}

// Run deletes bars older than the retention window
func (j *CleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := j.priceRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune old bars: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff.Format("2006-01-02"),
	}).Info("Data cleanup completed")

	return nil
}

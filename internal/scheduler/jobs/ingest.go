package jobs

import (
	"context"
	"fmt"

	"github.com/adityavk/nsescreener/internal/external/nse"
	"github.com/adityavk/nsescreener/internal/symbolstore"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// IngestJob refreshes the symbol master list from the NSE archives
type IngestJob struct {
	client *nse.Client
	store  *symbolstore.Store
	logger *logger.Logger
}

// NewIngestJob creates a new master list ingestion job
func NewIngestJob(client *nse.Client, store *symbolstore.Store, log *logger.Logger) *IngestJob {
	return &IngestJob{
		client: client,
		store:  store,
		logger: log,
	}
}

// Name returns the job name
func (j *IngestJob) Name() string {
	return "master_list_ingest"
}

// Schedule runs before market open, 8 AM IST daily
func (j *IngestJob) Schedule() string {
	return "0 0 8 * * *"
}

// Run downloads the master list and replaces the stored universe
func (j *IngestJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled master list ingestion")

	symbols, err := j.client.FetchMasterList(ctx)
	if err != nil {
		return fmt.Errorf("fetch master list: %w", err)
	}

	if err := j.store.Replace(ctx, symbols); err != nil {
		return fmt.Errorf("replace master list: %w", err)
	}

	j.logger.WithField("count", len(symbols)).Info("Master list ingested")
	return nil
}

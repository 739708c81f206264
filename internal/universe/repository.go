package universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// Repository keeps a history of resolved universes in Postgres, one row
// per resolution date. The date-stamped cache remains the source for
// "today's list"; this table exists for the dashboard's history view.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveSnapshot stores a resolved universe for its resolution date
func (r *Repository) SaveSnapshot(ctx context.Context, entry *contracts.CacheEntry) error {
	criteriaJSON, err := json.Marshal(entry.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}

	query := `
		INSERT INTO universe_snapshots (
			snapshot_date,
			symbols,
			symbol_count,
			criteria,
			duration_seconds,
			created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (snapshot_date) DO UPDATE SET
			symbols = EXCLUDED.symbols,
			symbol_count = EXCLUDED.symbol_count,
			criteria = EXCLUDED.criteria,
			duration_seconds = EXCLUDED.duration_seconds,
			created_at = NOW()
	`

	_, err = r.db.Exec(ctx, query,
		entry.Date,
		entry.Symbols,
		entry.Count,
		criteriaJSON,
		entry.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert universe snapshot: %w", err)
	}

	return nil
}

// GetLatestSnapshot retrieves the most recent resolved universe.
// Returns ErrDataUnavailable when no snapshot has been saved yet.
func (r *Repository) GetLatestSnapshot(ctx context.Context) (*contracts.CacheEntry, error) {
	query := `
		SELECT
			snapshot_date::text,
			symbols,
			symbol_count,
			criteria,
			duration_seconds,
			created_at
		FROM universe_snapshots
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	entry := &contracts.CacheEntry{Version: cacheVersion}

	var criteriaJSON []byte
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query).Scan(
		&entry.Date,
		&entry.Symbols,
		&entry.Count,
		&criteriaJSON,
		&entry.DurationSeconds,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrDataUnavailable
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	entry.ResolvedAt = createdAt

	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &entry.Criteria); err != nil {
			return nil, fmt.Errorf("unmarshal criteria: %w", err)
		}
	}

	return entry, nil
}

package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Repository persists daily OHLCV bars in Postgres. One row per
// symbol per trading day; re-fetching the same day overwrites in place.
type Repository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a new price repository
func NewRepository(db *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

// EnsureSchema creates the daily_prices table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol      TEXT NOT NULL,
			trade_date  DATE NOT NULL,
			open        DOUBLE PRECISION NOT NULL,
			high        DOUBLE PRECISION NOT NULL,
			low         DOUBLE PRECISION NOT NULL,
			close       DOUBLE PRECISION NOT NULL,
			volume      BIGINT NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (symbol, trade_date)
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create daily_prices table: %w", err)
	}
	return nil
}

// SaveBars upserts one symbol's bars in a single batch
func (r *Repository) SaveBars(ctx context.Context, symbol string, bars []contracts.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(
			`INSERT INTO daily_prices (symbol, trade_date, open, high, low, close, volume, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			 ON CONFLICT (symbol, trade_date) DO UPDATE SET
				open = EXCLUDED.open,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				close = EXCLUDED.close,
				volume = EXCLUDED.volume,
				updated_at = NOW()`,
			symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert bar for %s: %w", symbol, err)
		}
	}

	return nil
}

// GetBars returns up to limit most recent bars for a symbol, oldest
// first
func (r *Repository) GetBars(ctx context.Context, symbol string, limit int) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open, high, low, close, volume
		FROM (
			SELECT trade_date, open, high, low, close, volume
			FROM daily_prices
			WHERE symbol = $1
			ORDER BY trade_date DESC
			LIMIT $2
		) recent
		ORDER BY trade_date ASC
	`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	bars := make([]contracts.Bar, 0, limit)
	for rows.Next() {
		var bar contracts.Bar
		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, bar)
	}

	return bars, rows.Err()
}

// GetBarsBulk returns recent bars for many symbols in one query,
// keyed by symbol with bars oldest first
func (r *Repository) GetBarsBulk(ctx context.Context, symbols []string, limit int) (map[string][]contracts.Bar, error) {
	if len(symbols) == 0 {
		return map[string][]contracts.Bar{}, nil
	}

	query := `
		SELECT symbol, trade_date, open, high, low, close, volume
		FROM (
			SELECT symbol, trade_date, open, high, low, close, volume,
				ROW_NUMBER() OVER (PARTITION BY symbol ORDER BY trade_date DESC) AS rn
			FROM daily_prices
			WHERE symbol = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY symbol, trade_date ASC
	`

	rows, err := r.db.Query(ctx, query, symbols, limit)
	if err != nil {
		return nil, fmt.Errorf("query bars bulk: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]contracts.Bar, len(symbols))
	for rows.Next() {
		var symbol string
		var bar contracts.Bar
		if err := rows.Scan(&symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		result[symbol] = append(result[symbol], bar)
	}

	return result, rows.Err()
}

// DeleteOlderThan removes bars whose trade date is before the cutoff
// and reports how many rows went. Keeps the table bounded; the scans
// only ever look at the most recent weeks.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM daily_prices WHERE trade_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old bars: %w", err)
	}

	deleted := tag.RowsAffected()
	if deleted > 0 {
		r.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Pruned old daily bars")
	}
	return deleted, nil
}

// LatestTradeDate returns the most recent trade date present for any
// symbol, or the zero time when the table is empty
func (r *Repository) LatestTradeDate(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	err := r.db.QueryRow(ctx, `SELECT MAX(trade_date) FROM daily_prices`).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest trade date: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

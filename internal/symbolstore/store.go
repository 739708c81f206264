package symbolstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Store is the Postgres-backed symbol master list. It owns the
// tradable_stocks table and implements contracts.SymbolStore.
type Store struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewStore creates a new symbol store
func NewStore(db *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log,
	}
}

// EnsureSchema creates the tradable_stocks table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tradable_stocks (
			symbol          TEXT PRIMARY KEY,
			name_of_company TEXT NOT NULL DEFAULT '',
			series          TEXT NOT NULL,
			date_of_listing DATE,
			isin            TEXT,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create tradable_stocks table: %w", err)
	}
	return nil
}

// ListSymbols returns the full universe ordered by ticker
func (s *Store) ListSymbols(ctx context.Context) ([]contracts.Symbol, error) {
	query := `
		SELECT symbol, name_of_company, series
		FROM tradable_stocks
		ORDER BY symbol
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	symbols := make([]contracts.Symbol, 0)
	for rows.Next() {
		var sym contracts.Symbol
		if err := rows.Scan(&sym.Ticker, &sym.Name, &sym.Series); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate symbols: %w", rows.Err())
	}

	return symbols, nil
}

// Replace upserts the full master list inside one transaction. Symbols
// no longer present in the download are removed so delisted stocks drop
// out of the universe.
func (s *Store) Replace(ctx context.Context, symbols []contracts.Symbol) error {
	if len(symbols) == 0 {
		return fmt.Errorf("refusing to replace master list with empty set: %w", contracts.ErrDataUnavailable)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tradable_stocks`); err != nil {
		return fmt.Errorf("clear tradable_stocks: %w", err)
	}

	batch := &pgx.Batch{}
	for _, sym := range symbols {
		batch.Queue(
			`INSERT INTO tradable_stocks (symbol, name_of_company, series, updated_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (symbol) DO UPDATE SET
				name_of_company = EXCLUDED.name_of_company,
				series = EXCLUDED.series,
				updated_at = NOW()`,
			sym.Ticker, sym.Name, sym.Series,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range symbols {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert symbol: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.WithField("count", len(symbols)).Info("Symbol master list replaced")
	return nil
}

// Count returns the number of symbols in the master list
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM tradable_stocks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count symbols: %w", err)
	}
	return count, nil
}

// SeriesBreakdown returns symbol counts per series tag, for status
// displays
func (s *Store) SeriesBreakdown(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `SELECT series, COUNT(*) FROM tradable_stocks GROUP BY series`)
	if err != nil {
		return nil, fmt.Errorf("query series breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var series string
		var count int
		if err := rows.Scan(&series, &count); err != nil {
			return nil, fmt.Errorf("scan series breakdown: %w", err)
		}
		breakdown[series] = count
	}

	return breakdown, rows.Err()
}

// Package history provides the on-disk cache of daily closing prices
// fetched from the market-data provider. Cached rows act as the
// time-bounded memoization of the raw fetch: a symbol synced less than
// the staleness window ago is served from SQLite without touching the
// provider.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoshiyanatsu/stock-prediction/internal/database"
	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

// Repository provides access to cached historical price data
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "history_repo").Logger(),
	}
}

// GetSecurity returns the cached security row, or nil when the symbol
// has never been synced.
func (r *Repository) GetSecurity(symbol string) (*domain.Security, error) {
	query := `SELECT symbol, name, last_synced FROM securities WHERE symbol = ?`

	var sec domain.Security
	var lastSynced int64
	err := r.db.QueryRow(query, symbol).Scan(&sec.Symbol, &sec.Name, &lastSynced)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query security: %w", err)
	}

	sec.LastUpdated = time.Unix(lastSynced, 0).UTC()
	return &sec, nil
}

// GetDailyPrices fetches cached daily closes for a symbol in
// chronological order.
func (r *Repository) GetDailyPrices(symbol string) ([]domain.PricePoint, error) {
	query := `
		SELECT date, close
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.PricePoint
	for rows.Next() {
		var dateStr string
		var closePrice float64

		if err := rows.Scan(&dateStr, &closePrice); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			r.log.Warn().Str("symbol", symbol).Str("date", dateStr).Msg("Skipping unparseable date")
			continue
		}

		prices = append(prices, domain.PricePoint{Date: date, Close: closePrice})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return prices, nil
}

// ReplacePrices stores a freshly fetched series for a symbol, replacing
// any previous rows, and records the sync timestamp on the security.
func (r *Repository) ReplacePrices(symbol, name string, prices []domain.PricePoint, syncedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_prices WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("failed to clear old prices: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(symbol, p.Date.Format("2006-01-02"), p.Close); err != nil {
			return fmt.Errorf("failed to insert price: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO securities (symbol, name, last_synced)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, last_synced = excluded.last_synced
	`, symbol, name, syncedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert security: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.log.Debug().Str("symbol", symbol).Int("count", len(prices)).Msg("Stored price series")
	return nil
}

// IsFresh reports whether the symbol was synced within maxAge of now
func (r *Repository) IsFresh(symbol string, maxAge time.Duration, now time.Time) (bool, error) {
	sec, err := r.GetSecurity(symbol)
	if err != nil {
		return false, err
	}
	if sec == nil {
		return false, nil
	}
	return now.Sub(sec.LastUpdated) < maxAge, nil
}

// PruneStale deletes price rows for securities not synced within maxAge.
// Used by the maintenance job; returns how many symbols were pruned.
func (r *Repository) PruneStale(maxAge time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-maxAge).Unix()

	rows, err := r.db.Query(`SELECT symbol FROM securities WHERE last_synced < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to query stale securities: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return 0, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating stale securities: %w", err)
	}

	for _, symbol := range symbols {
		if _, err := r.db.Exec(`DELETE FROM daily_prices WHERE symbol = ?`, symbol); err != nil {
			return 0, fmt.Errorf("failed to prune prices: %w", err)
		}
		if _, err := r.db.Exec(`DELETE FROM securities WHERE symbol = ?`, symbol); err != nil {
			return 0, fmt.Errorf("failed to prune security: %w", err)
		}
	}

	return len(symbols), nil
}

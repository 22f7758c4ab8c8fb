package outcomes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantops/modellab/internal/contracts"
)

// Repository implements contracts.OutcomeRepository on PostgreSQL. The
// table is insert-only; durability comes from the database's write-ahead
// log and MVCC keeps readers unblocked while a writer commits.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new outcome repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts one outcome. Existing rows are never updated.
func (r *Repository) Append(ctx context.Context, o *contracts.TradingOutcome) error {
	featuresJSON, err := json.Marshal(o.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	query := `
		INSERT INTO trading_outcomes
			(symbol, side, entry_price, exit_price, entry_time, exit_time,
			 mode, outcome, features, score, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		o.Symbol, string(o.Side), o.EntryPrice, o.ExitPrice,
		o.EntryTime, o.ExitTime, string(o.Mode), o.Outcome,
		featuresJSON, o.Score, o.Timestamp,
	)
	return err
}

// Query returns outcomes for a mode since the given time, ascending by
// decision timestamp.
func (r *Repository) Query(ctx context.Context, mode contracts.Mode, since time.Time) ([]*contracts.TradingOutcome, error) {
	query := `
		SELECT symbol, side, entry_price, exit_price, entry_time, exit_time,
		       mode, outcome, features, score, decided_at
		FROM trading_outcomes
		WHERE mode = $1 AND decided_at >= $2
		ORDER BY decided_at ASC
	`

	rows, err := r.pool.Query(ctx, query, string(mode), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*contracts.TradingOutcome
	for rows.Next() {
		var o contracts.TradingOutcome
		var side, m string
		var featuresJSON []byte
		if err := rows.Scan(
			&o.Symbol, &side, &o.EntryPrice, &o.ExitPrice,
			&o.EntryTime, &o.ExitTime, &m, &o.Outcome,
			&featuresJSON, &o.Score, &o.Timestamp,
		); err != nil {
			return nil, err
		}
		o.Side = contracts.Side(side)
		o.Mode = contracts.Mode(m)
		if err := json.Unmarshal(featuresJSON, &o.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
		result = append(result, &o)
	}
	return result, rows.Err()
}

// Count returns the total number of outcomes.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trading_outcomes`).Scan(&count)
	return count, err
}

// CountSince returns the number of outcomes for a mode since the given
// time.
func (r *Repository) CountSince(ctx context.Context, mode contracts.Mode, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trading_outcomes WHERE mode = $1 AND decided_at >= $2`,
		string(mode), since,
	).Scan(&count)
	return count, err
}

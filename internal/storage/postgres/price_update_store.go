package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// PriceUpdateStore implements storage.PriceUpdateStore using PostgreSQL.
type PriceUpdateStore struct {
	pool *Pool
}

// NewPriceUpdateStore creates a new PriceUpdateStore.
func NewPriceUpdateStore(pool *Pool) *PriceUpdateStore {
	return &PriceUpdateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceUpdateStore = (*PriceUpdateStore)(nil)

// Insert adds a new price update. Returns ErrDuplicateKey if update_id exists.
func (s *PriceUpdateStore) Insert(ctx context.Context, u *domain.PriceUpdate) error {
	if u == nil || u.UpdateID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO price_updates (
			update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		u.UpdateID,
		u.TokenID,
		string(u.Kind),
		u.Timestamp,
		u.OldPrice,
		u.NewPrice,
		toNullDecimal(u.ChangePct),
		string(u.Source),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return errors.Wrap(err, "insert price update")
	}
	return nil
}

// Count returns the number of recorded price updates.
func (s *PriceUpdateStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM price_updates`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count price updates")
	}
	return int(n), nil
}

// GetByTimeRange retrieves updates within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PriceUpdate, error) {
	query := `
		SELECT update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		FROM price_updates
		WHERE timestamp_ms >= $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "query price updates by time range")
	}
	defer rows.Close()

	return scanPriceUpdates(rows)
}

// GetByTokenID retrieves all updates recorded for a token, ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PriceUpdate, error) {
	query := `
		SELECT update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		FROM price_updates
		WHERE token_id = $1
		ORDER BY timestamp_ms ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "query price updates by token id")
	}
	defer rows.Close()

	return scanPriceUpdates(rows)
}

func scanPriceUpdates(rows pgx.Rows) ([]*domain.PriceUpdate, error) {
	var updates []*domain.PriceUpdate

	for rows.Next() {
		var u domain.PriceUpdate
		var kind, source string
		var change decimal.NullDecimal

		err := rows.Scan(
			&u.UpdateID,
			&u.TokenID,
			&kind,
			&u.Timestamp,
			&u.OldPrice,
			&u.NewPrice,
			&change,
			&source,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan price update row")
		}

		u.Kind = domain.PriceUpdateKind(kind)
		u.Source = domain.PriceSource(source)
		if change.Valid {
			pct := change.Decimal
			u.ChangePct = &pct
		}
		updates = append(updates, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate price update rows")
	}

	return updates, nil
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

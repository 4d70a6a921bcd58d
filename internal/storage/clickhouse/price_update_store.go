package clickhouse

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// PriceUpdateStore implements storage.PriceUpdateStore using ClickHouse.
type PriceUpdateStore struct {
	conn *Conn
}

// NewPriceUpdateStore creates a new PriceUpdateStore.
func NewPriceUpdateStore(conn *Conn) *PriceUpdateStore {
	return &PriceUpdateStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceUpdateStore = (*PriceUpdateStore)(nil)

// Insert adds a new price update. Returns ErrDuplicateKey if update_id exists.
func (s *PriceUpdateStore) Insert(ctx context.Context, u *domain.PriceUpdate) error {
	if u == nil || u.UpdateID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would silently replace, check explicitly instead
	exists, err := s.exists(ctx, u.UpdateID)
	if err != nil {
		return errors.Wrap(err, "check exists")
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_updates (
			update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		)
	`)
	if err != nil {
		return errors.Wrap(err, "prepare batch")
	}

	err = batch.Append(
		u.UpdateID, u.TokenID, string(u.Kind), uint64(u.Timestamp),
		u.OldPrice, u.NewPrice, u.ChangePct, string(u.Source),
	)
	if err != nil {
		return errors.Wrap(err, "append to batch")
	}

	if err := batch.Send(); err != nil {
		return errors.Wrap(err, "send batch")
	}
	return nil
}

// Count returns the number of recorded price updates.
func (s *PriceUpdateStore) Count(ctx context.Context) (int, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM price_updates FINAL`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count price updates")
	}
	return int(count), nil
}

// GetByTimeRange retrieves updates within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PriceUpdate, error) {
	query := `
		SELECT update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		FROM price_updates FINAL
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, errors.Wrap(err, "query by time range")
	}
	defer rows.Close()

	return scanPriceUpdates(rows)
}

// GetByTokenID retrieves all updates recorded for a token, ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PriceUpdate, error) {
	query := `
		SELECT update_id, token_id, kind, timestamp_ms, old_price, new_price, change_pct, source
		FROM price_updates FINAL
		WHERE token_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "query by token id")
	}
	defer rows.Close()

	return scanPriceUpdates(rows)
}

// exists checks if an update with the given id exists.
func (s *PriceUpdateStore) exists(ctx context.Context, updateID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM price_updates WHERE update_id = ?`, updateID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPriceUpdates scans multiple rows.
func scanPriceUpdates(rows chRows) ([]*domain.PriceUpdate, error) {
	var updates []*domain.PriceUpdate

	for rows.Next() {
		var u domain.PriceUpdate
		var kind, source string
		var timestampMs uint64
		var change *decimal.Decimal

		err := rows.Scan(
			&u.UpdateID, &u.TokenID, &kind, &timestampMs,
			&u.OldPrice, &u.NewPrice, &change, &source,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan price update row")
		}

		u.Kind = domain.PriceUpdateKind(kind)
		u.Source = domain.PriceSource(source)
		u.Timestamp = int64(timestampMs)
		u.ChangePct = change
		updates = append(updates, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate price update rows")
	}

	return updates, nil
}

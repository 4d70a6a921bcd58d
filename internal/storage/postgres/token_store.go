package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	token_id, sequence, owner, created_at, creation_price,
	color, rarity, mood, animation_speed, background, price,
	update_count, last_updated
`

// Insert adds a new token. Returns ErrDuplicateKey if token_id or sequence exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	a := t.Attributes
	_, err := s.pool.Exec(ctx, query,
		t.TokenID,
		t.Sequence,
		t.Owner,
		t.CreatedAt,
		t.CreationPrice,
		string(a.Color),
		string(a.Rarity),
		string(a.Mood),
		string(a.AnimationSpeed),
		string(a.Background),
		a.Price,
		t.UpdateCount,
		t.LastUpdated,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return errors.Wrap(err, "insert token")
	}
	return nil
}

// Update replaces the mutable columns of a token. Returns ErrNotFound if token_id does not exist.
func (s *TokenStore) Update(ctx context.Context, t *domain.Token) error {
	if t == nil || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE tokens SET
			owner = $2,
			color = $3, rarity = $4, mood = $5, animation_speed = $6, background = $7, price = $8,
			update_count = $9,
			last_updated = $10
		WHERE token_id = $1
	`

	a := t.Attributes
	tag, err := s.pool.Exec(ctx, query,
		t.TokenID,
		t.Owner,
		string(a.Color),
		string(a.Rarity),
		string(a.Mood),
		string(a.AnimationSpeed),
		string(a.Background),
		a.Price,
		t.UpdateCount,
		t.LastUpdated,
	)
	if err != nil {
		return errors.Wrap(err, "update token")
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, tokenID string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE token_id = $1`

	row := s.pool.QueryRow(ctx, query, tokenID)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "get token by id")
	}
	return t, nil
}

// List retrieves all tokens, ordered by sequence ASC.
func (s *TokenStore) List(ctx context.Context) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY sequence ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list tokens")
	}
	defer rows.Close()

	var tokens []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan token row")
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate token rows")
	}
	return tokens, nil
}

// CountByRarity counts tokens per current rarity.
func (s *TokenStore) CountByRarity(ctx context.Context) (map[domain.Rarity]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT rarity, count(*) FROM tokens GROUP BY rarity`)
	if err != nil {
		return nil, errors.Wrap(err, "count tokens by rarity")
	}
	defer rows.Close()

	counts := make(map[domain.Rarity]int)
	for rows.Next() {
		var rarity string
		var n int64
		if err := rows.Scan(&rarity, &n); err != nil {
			return nil, errors.Wrap(err, "scan rarity count")
		}
		counts[domain.Rarity(rarity)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rarity counts")
	}
	return counts, nil
}

// scanToken scans a single row into Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var color, rarity, mood, animation, background string

	err := row.Scan(
		&t.TokenID,
		&t.Sequence,
		&t.Owner,
		&t.CreatedAt,
		&t.CreationPrice,
		&color,
		&rarity,
		&mood,
		&animation,
		&background,
		&t.Attributes.Price,
		&t.UpdateCount,
		&t.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	t.Attributes.Color = domain.Color(color)
	t.Attributes.Rarity = domain.Rarity(rarity)
	t.Attributes.Mood = domain.Mood(mood)
	t.Attributes.AnimationSpeed = domain.AnimationSpeed(animation)
	t.Attributes.Background = domain.Background(background)

	return &t, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"semperland-cache/internal/domain"
	"semperland-cache/internal/storage"
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

// Upsert inserts or refreshes snapshots in one transaction.
// Rows observed later than the incoming snapshot are left untouched.
func (s *TokenStore) Upsert(ctx context.Context, snapshots []*domain.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil || snap.Token == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO token_snapshots (
			token, token_group, brand, name, description, image, decimals, properties, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token) DO UPDATE SET
			token_group = EXCLUDED.token_group,
			brand       = EXCLUDED.brand,
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			image       = EXCLUDED.image,
			decimals    = EXCLUDED.decimals,
			properties  = EXCLUDED.properties,
			observed_at = EXCLUDED.observed_at
		WHERE token_snapshots.observed_at <= EXCLUDED.observed_at
	`

	for _, snap := range snapshots {
		properties, err := json.Marshal(snap.Metadata.Properties)
		if err != nil {
			return fmt.Errorf("encode properties of %s: %w", snap.Token, err)
		}

		_, err = tx.Exec(ctx, query,
			snap.Token,
			string(snap.TokenGroup),
			snap.Brand,
			snap.Metadata.Name,
			snap.Metadata.Description,
			snap.Metadata.Image,
			int64(snap.Metadata.Decimals),
			string(properties),
			snap.ObservedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert token snapshot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByToken retrieves the snapshot of a token id. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByToken(ctx context.Context, token string) (*domain.TokenSnapshot, error) {
	query := `
		SELECT token, token_group, brand, name, description, image, decimals, properties, observed_at
		FROM token_snapshots
		WHERE token = $1
	`

	row := s.pool.QueryRow(ctx, query, token)
	snap, err := scanTokenSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token snapshot: %w", err)
	}
	return snap, nil
}

// GetByBrand retrieves all snapshots of a brand, ordered by token id ASC.
func (s *TokenStore) GetByBrand(ctx context.Context, brand string) ([]*domain.TokenSnapshot, error) {
	query := `
		SELECT token, token_group, brand, name, description, image, decimals, properties, observed_at
		FROM token_snapshots
		WHERE brand = $1
		ORDER BY token ASC
	`

	rows, err := s.pool.Query(ctx, query, brand)
	if err != nil {
		return nil, fmt.Errorf("query token snapshots by brand: %w", err)
	}
	defer rows.Close()

	var result []*domain.TokenSnapshot
	for rows.Next() {
		snap, err := scanTokenSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token snapshots: %w", err)
	}

	return result, nil
}

// scanTokenSnapshot scans a single row into TokenSnapshot.
func scanTokenSnapshot(row pgx.Row) (*domain.TokenSnapshot, error) {
	var snap domain.TokenSnapshot
	var tokenGroup string
	var decimals int64
	var properties []byte

	err := row.Scan(
		&snap.Token,
		&tokenGroup,
		&snap.Brand,
		&snap.Metadata.Name,
		&snap.Metadata.Description,
		&snap.Metadata.Image,
		&decimals,
		&properties,
		&snap.ObservedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.TokenGroup = domain.TokenGroup(tokenGroup)
	snap.Metadata.Decimals = uint32(decimals)
	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &snap.Metadata.Properties); err != nil {
			return nil, fmt.Errorf("decode properties: %w", err)
		}
	}

	return &snap, nil
}

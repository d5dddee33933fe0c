package storage

import (
	"context"

	"semperland-cache/internal/domain"
)

// TokenStore provides access to token_snapshots storage.
// One row per token id; a newer observation replaces an older one.
type TokenStore interface {
	// Upsert inserts or refreshes snapshots. An older ObservedAt never
	// overwrites a newer one.
	Upsert(ctx context.Context, snapshots []*domain.TokenSnapshot) error

	// GetByToken retrieves the snapshot of a token id. Returns ErrNotFound if not exists.
	GetByToken(ctx context.Context, token string) (*domain.TokenSnapshot, error)

	// GetByBrand retrieves all snapshots of a brand, ordered by token id ASC.
	GetByBrand(ctx context.Context, brand string) ([]*domain.TokenSnapshot, error)
}

// BalanceSnapshotStore provides access to balance_snapshots storage.
type BalanceSnapshotStore interface {
	// InsertBulk appends observations. Fails entire batch on duplicate (owner, token, observed_at).
	InsertBulk(ctx context.Context, snapshots []*domain.BalanceSnapshot) error

	// GetByOwner retrieves all observations of an owner, ordered by observed_at ASC, token ASC.
	GetByOwner(ctx context.Context, owner string) ([]*domain.BalanceSnapshot, error)

	// GetLatest retrieves the most recent observation per token of an owner, ordered by token ASC.
	GetLatest(ctx context.Context, owner string) ([]*domain.BalanceSnapshot, error)
}

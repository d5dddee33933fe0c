package clickhouse

import (
	"context"
	"fmt"

	"semperland-cache/internal/domain"
	"semperland-cache/internal/storage"
)

// BalanceSnapshotStore implements storage.BalanceSnapshotStore using ClickHouse.
type BalanceSnapshotStore struct {
	conn *Conn
}

// NewBalanceSnapshotStore creates a new BalanceSnapshotStore.
func NewBalanceSnapshotStore(conn *Conn) *BalanceSnapshotStore {
	return &BalanceSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BalanceSnapshotStore = (*BalanceSnapshotStore)(nil)

// InsertBulk appends observations. Fails entire batch on duplicate.
// MergeTree does not enforce uniqueness, so keys are checked before the batch is sent.
func (s *BalanceSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.BalanceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	type key struct {
		owner      string
		token      string
		observedAt int64
	}
	seen := make(map[key]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.Owner == "" || snap.Token == "" || snap.ObservedAt < 0 {
			return storage.ErrInvalidInput
		}
		k := key{snap.Owner, snap.Token, snap.ObservedAt}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.Owner, snap.Token, snap.ObservedAt)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO balance_snapshots (owner, token, amount, observed_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		if err := batch.Append(snap.Owner, snap.Token, snap.Amount, uint64(snap.ObservedAt)); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByOwner retrieves all observations of an owner, ordered by observed_at ASC, token ASC.
func (s *BalanceSnapshotStore) GetByOwner(ctx context.Context, owner string) ([]*domain.BalanceSnapshot, error) {
	query := `
		SELECT owner, token, amount, observed_at
		FROM balance_snapshots
		WHERE owner = ?
		ORDER BY observed_at ASC, token ASC
	`

	rows, err := s.conn.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query by owner: %w", err)
	}
	defer rows.Close()

	return scanBalanceSnapshots(rows)
}

// GetLatest retrieves the most recent observation per token of an owner, ordered by token ASC.
func (s *BalanceSnapshotStore) GetLatest(ctx context.Context, owner string) ([]*domain.BalanceSnapshot, error) {
	query := `
		SELECT owner, token, argMax(amount, observed_at), max(observed_at)
		FROM balance_snapshots
		WHERE owner = ?
		GROUP BY owner, token
		ORDER BY token ASC
	`

	rows, err := s.conn.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query latest by owner: %w", err)
	}
	defer rows.Close()

	return scanBalanceSnapshots(rows)
}

func (s *BalanceSnapshotStore) exists(ctx context.Context, owner, token string, observedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM balance_snapshots
		WHERE owner = ? AND token = ? AND observed_at = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, owner, token, uint64(observedAt)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanBalanceSnapshots(rows chRows) ([]*domain.BalanceSnapshot, error) {
	snapshots := make([]*domain.BalanceSnapshot, 0)

	for rows.Next() {
		var snap domain.BalanceSnapshot
		var observedAt uint64

		if err := rows.Scan(&snap.Owner, &snap.Token, &snap.Amount, &observedAt); err != nil {
			return nil, fmt.Errorf("scan balance snapshot row: %w", err)
		}
		snap.ObservedAt = int64(observedAt)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance snapshot rows: %w", err)
	}

	return snapshots, nil
}

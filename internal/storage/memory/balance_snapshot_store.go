package memory

import (
	"context"
	"sort"
	"sync"

	"semperland-cache/internal/domain"
	"semperland-cache/internal/storage"
)

// balanceKey identifies one balance observation.
type balanceKey struct {
	owner      string
	token      string
	observedAt int64
}

// BalanceSnapshotStore is an in-memory implementation of storage.BalanceSnapshotStore.
type BalanceSnapshotStore struct {
	mu      sync.RWMutex
	data    map[balanceKey]*domain.BalanceSnapshot
	byOwner map[string][]*domain.BalanceSnapshot
}

// NewBalanceSnapshotStore creates a new in-memory balance snapshot store.
func NewBalanceSnapshotStore() *BalanceSnapshotStore {
	return &BalanceSnapshotStore{
		data:    make(map[balanceKey]*domain.BalanceSnapshot),
		byOwner: make(map[string][]*domain.BalanceSnapshot),
	}
}

// InsertBulk appends observations atomically. Fails entire batch on any duplicate.
func (s *BalanceSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.BalanceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything.
	seen := make(map[balanceKey]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.Owner == "" || snap.Token == "" {
			return storage.ErrInvalidInput
		}
		k := balanceKey{snap.Owner, snap.Token, snap.ObservedAt}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, snap := range snapshots {
		snapCopy := *snap
		s.data[balanceKey{snap.Owner, snap.Token, snap.ObservedAt}] = &snapCopy
		s.byOwner[snap.Owner] = append(s.byOwner[snap.Owner], &snapCopy)
	}
	return nil
}

// GetByOwner retrieves all observations of an owner, ordered by observed_at ASC, token ASC.
func (s *BalanceSnapshotStore) GetByOwner(_ context.Context, owner string) ([]*domain.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := copySnapshots(s.byOwner[owner])
	sortSnapshots(result)
	return result, nil
}

// GetLatest retrieves the most recent observation per token of an owner, ordered by token ASC.
func (s *BalanceSnapshotStore) GetLatest(_ context.Context, owner string) ([]*domain.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.BalanceSnapshot)
	for _, snap := range s.byOwner[owner] {
		if cur, ok := latest[snap.Token]; !ok || snap.ObservedAt > cur.ObservedAt {
			latest[snap.Token] = snap
		}
	}

	result := make([]*domain.BalanceSnapshot, 0, len(latest))
	for _, snap := range latest {
		snapCopy := *snap
		result = append(result, &snapCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Token < result[j].Token
	})
	return result, nil
}

func copySnapshots(in []*domain.BalanceSnapshot) []*domain.BalanceSnapshot {
	out := make([]*domain.BalanceSnapshot, len(in))
	for i, snap := range in {
		snapCopy := *snap
		out[i] = &snapCopy
	}
	return out
}

func sortSnapshots(snaps []*domain.BalanceSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].ObservedAt != snaps[j].ObservedAt {
			return snaps[i].ObservedAt < snaps[j].ObservedAt
		}
		return snaps[i].Token < snaps[j].Token
	})
}

var _ storage.BalanceSnapshotStore = (*BalanceSnapshotStore)(nil)

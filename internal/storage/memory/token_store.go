package memory

import (
	"context"
	"sort"
	"sync"

	"semperland-cache/internal/domain"
	"semperland-cache/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu      sync.RWMutex
	byToken map[string]*domain.TokenSnapshot // keyed by token id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byToken: make(map[string]*domain.TokenSnapshot),
	}
}

// Upsert inserts or refreshes snapshots. The batch is validated before any write.
func (s *TokenStore) Upsert(_ context.Context, snapshots []*domain.TokenSnapshot) error {
	for _, snap := range snapshots {
		if snap == nil || snap.Token == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		if existing, ok := s.byToken[snap.Token]; ok && existing.ObservedAt > snap.ObservedAt {
			continue
		}
		snapCopy := *snap
		s.byToken[snap.Token] = &snapCopy
	}
	return nil
}

// GetByToken retrieves the snapshot of a token id. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByToken(_ context.Context, token string) (*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.byToken[token]
	if !exists {
		return nil, storage.ErrNotFound
	}

	snapCopy := *snap
	return &snapCopy, nil
}

// GetByBrand retrieves all snapshots of a brand, ordered by token id ASC.
func (s *TokenStore) GetByBrand(_ context.Context, brand string) ([]*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenSnapshot
	for _, snap := range s.byToken {
		if snap.Brand == brand {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Token < result[j].Token
	})
	return result, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)

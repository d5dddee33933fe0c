package memory

import (
	"context"
	"errors"
	"testing"

	"semperland-cache/internal/domain"
	"semperland-cache/internal/storage"
)

func TestBalanceSnapshotStore_InsertBulkAndGetByOwner(t *testing.T) {
	store := NewBalanceSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.BalanceSnapshot{
		{Owner: "0xO", Token: "0xT2", Amount: "5", ObservedAt: 2000},
		{Owner: "0xO", Token: "0xT1", Amount: "100", ObservedAt: 1000},
		{Owner: "0xO", Token: "0xT1", Amount: "90", ObservedAt: 2000},
		{Owner: "0xOther", Token: "0xT1", Amount: "1", ObservedAt: 1000},
	}

	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByOwner(ctx, "0xO")
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(result))
	}

	want := []struct {
		token string
		at    int64
	}{{"0xT1", 1000}, {"0xT1", 2000}, {"0xT2", 2000}}
	for i, w := range want {
		if result[i].Token != w.token || result[i].ObservedAt != w.at {
			t.Errorf("snapshot %d: got (%s, %d), want (%s, %d)", i, result[i].Token, result[i].ObservedAt, w.token, w.at)
		}
	}
}

func TestBalanceSnapshotStore_GetLatest(t *testing.T) {
	store := NewBalanceSnapshotStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.BalanceSnapshot{
		{Owner: "0xO", Token: "0xT1", Amount: "100", ObservedAt: 1000},
		{Owner: "0xO", Token: "0xT1", Amount: "90", ObservedAt: 3000},
		{Owner: "0xO", Token: "0xT2", Amount: "7", ObservedAt: 2000},
	})

	result, err := store.GetLatest(ctx, "0xO")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(result))
	}
	if result[0].Token != "0xT1" || result[0].Amount != "90" {
		t.Errorf("latest 0xT1 mismatch: %+v", result[0])
	}
	if result[1].Token != "0xT2" || result[1].Amount != "7" {
		t.Errorf("latest 0xT2 mismatch: %+v", result[1])
	}
}

func TestBalanceSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewBalanceSnapshotStore()
	ctx := context.Background()

	snap := &domain.BalanceSnapshot{Owner: "0xO", Token: "0xT1", Amount: "1", ObservedAt: 1000}
	if err := store.InsertBulk(ctx, []*domain.BalanceSnapshot{snap}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.BalanceSnapshot{
		{Owner: "0xO", Token: "0xT2", Amount: "2", ObservedAt: 1000},
		snap,
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The batch must not be partially applied.
	result, _ := store.GetByOwner(ctx, "0xO")
	if len(result) != 1 {
		t.Errorf("expected 1 snapshot after failed batch, got %d", len(result))
	}
}

func TestBalanceSnapshotStore_IntraBatchDuplicate(t *testing.T) {
	store := NewBalanceSnapshotStore()

	snap := &domain.BalanceSnapshot{Owner: "0xO", Token: "0xT1", Amount: "1", ObservedAt: 1000}
	err := store.InsertBulk(context.Background(), []*domain.BalanceSnapshot{snap, snap})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestBalanceSnapshotStore_InvalidInput(t *testing.T) {
	store := NewBalanceSnapshotStore()

	err := store.InsertBulk(context.Background(), []*domain.BalanceSnapshot{{Token: "0xT1", ObservedAt: 1}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBalanceSnapshotStore_EmptyOwner(t *testing.T) {
	store := NewBalanceSnapshotStore()

	result, err := store.GetByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no snapshots, got %d", len(result))
	}
}

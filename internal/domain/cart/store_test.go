package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func snap(partID, name string, price string) Snapshot {
	return Snapshot{
		PartID:      partID,
		PartName:    name,
		PartCode:    "C-" + partID,
		MachineName: "Tractor",
		UnitPrice:   d(price),
	}
}

func newTestStore() (*Store, *MemoryStorage) {
	storage := NewMemoryStorage()
	return NewStore(storage, zap.NewNop()), storage
}

// failingStorage simulates a broken persistence backend.
type failingStorage struct {
	loadErr   error
	saveErr   error
	deleteErr error
	blob      []byte
}

func (f *failingStorage) Load(_ context.Context, _ string) ([]byte, error) {
	return f.blob, f.loadErr
}

func (f *failingStorage) Save(_ context.Context, _ string, _ []byte) error {
	return f.saveErr
}

func (f *failingStorage) Delete(_ context.Context, _ string) error {
	return f.deleteErr
}

// --- Tests ---

func TestAddItem_MergesByPartID(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)
	items := s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 3)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, d("2500").Equal(LineTotal(items[0])))
}

func TestAddItem_AppendsDistinctParts(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 1)
	s.AddItem(ctx, "c1", snap("P2", "Oil Seal", "120"), 1)
	items := s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 1)

	require.Len(t, items, 2)
	assert.Equal(t, "P1", items[0].PartID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "P2", items[1].PartID)
	assert.Equal(t, "", items[1].Comment)
}

func TestAddItem_QuantityFloor(t *testing.T) {
	s, _ := newTestStore()

	items := s.AddItem(context.Background(), "c1", snap("P1", "Piston Ring", "500"), 0)

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name     string
		partID   string
		quantity int
		wantLen  int
		wantQty  int
	}{
		{name: "update existing", partID: "P1", quantity: 7, wantLen: 2, wantQty: 7},
		{name: "zero removes", partID: "P1", quantity: 0, wantLen: 1},
		{name: "negative removes", partID: "P1", quantity: -3, wantLen: 1},
		{name: "absent part is a no-op", partID: "P9", quantity: 4, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			ctx := context.Background()
			s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)
			s.AddItem(ctx, "c1", snap("P2", "Oil Seal", "120"), 1)

			items := s.SetQuantity(ctx, "c1", tt.partID, tt.quantity)

			require.Len(t, items, tt.wantLen)
			if tt.wantQty > 0 {
				assert.Equal(t, tt.wantQty, items[0].Quantity)
			}
			// The untouched line is never affected.
			last := items[len(items)-1]
			assert.Equal(t, "P2", last.PartID)
			assert.Equal(t, 1, last.Quantity)
		})
	}
}

func TestRemoveItem_EqualsSetQuantityZero(t *testing.T) {
	ctx := context.Background()

	s1, _ := newTestStore()
	s1.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)
	s1.AddItem(ctx, "c1", snap("P2", "Oil Seal", "120"), 1)
	removed := s1.RemoveItem(ctx, "c1", "P1")

	s2, _ := newTestStore()
	s2.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)
	s2.AddItem(ctx, "c1", snap("P2", "Oil Seal", "120"), 1)
	zeroed := s2.SetQuantity(ctx, "c1", "P1", 0)

	assert.Equal(t, zeroed, removed)
	require.Len(t, removed, 1)
	assert.Equal(t, "P2", removed[0].PartID)
}

func TestSetComment(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)

	items := s.SetComment(ctx, "c1", "P1", "hardened steel, 90mm bore")
	require.Len(t, items, 1)
	assert.Equal(t, "hardened steel, 90mm bore", items[0].Comment)
	assert.Equal(t, 2, items[0].Quantity)

	// Absent part is a no-op.
	items = s.SetComment(ctx, "c1", "P9", "nope")
	require.Len(t, items, 1)
	assert.Equal(t, "hardened steel, 90mm bore", items[0].Comment)
}

func TestRoundTrip_PreservesItemsAndOrder(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	s := NewStore(storage, zap.NewNop())
	s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)
	s.AddItem(ctx, "c1", snap("P2", "Oil Seal", "120.50"), 3)
	s.SetComment(ctx, "c1", "P2", "viton, double lip")
	want := s.Items(ctx, "c1")

	// A fresh Store over the same storage rehydrates the identical cart.
	rehydrated := NewStore(storage, zap.NewNop()).Items(ctx, "c1")

	require.Len(t, rehydrated, 2)
	assert.Equal(t, want, rehydrated)
	assert.Equal(t, "P1", rehydrated[0].PartID)
	assert.Equal(t, "viton, double lip", rehydrated[1].Comment)
	assert.True(t, d("120.50").Equal(rehydrated[1].UnitPrice))
}

func TestItems_CorruptBlobFallsBackToEmpty(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, "c1", []byte(`{not json`)))

	s := NewStore(storage, zap.NewNop())
	assert.Empty(t, s.Items(ctx, "c1"))
}

func TestItems_LoadErrorFallsBackToEmpty(t *testing.T) {
	s := NewStore(&failingStorage{loadErr: errors.New("connection refused")}, zap.NewNop())
	assert.Empty(t, s.Items(context.Background(), "c1"))
}

func TestMutations_SurviveSaveFailure(t *testing.T) {
	s := NewStore(&failingStorage{saveErr: errors.New("disk full")}, zap.NewNop())

	items := s.AddItem(context.Background(), "c1", snap("P1", "Piston Ring", "500"), 2)

	// The in-memory result is intact even though persistence failed.
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestClear_SwallowsDeleteFailure(t *testing.T) {
	s := NewStore(&failingStorage{deleteErr: errors.New("timeout")}, zap.NewNop())
	assert.NotPanics(t, func() {
		s.Clear(context.Background(), "c1")
	})
}

func TestClear_EmptiesCart(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	s.AddItem(ctx, "c1", snap("P1", "Piston Ring", "500"), 2)

	s.Clear(ctx, "c1")
	assert.Empty(t, s.Items(ctx, "c1"))
}

package cart

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Storage persists the serialized item list of a cart under its token.
// Load returns (nil, nil) when no cart exists for the token.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Save(ctx context.Context, cartID string, blob []byte) error
	Delete(ctx context.Context, cartID string) error
}

// Store owns all cart mutations. Every mutation rewrites the full serialized
// item list for the cart token; reads rehydrate from storage and fall back to
// an empty cart when the blob is missing or corrupt. Storage write failures
// are logged and swallowed so a flaky backend never blocks the in-memory
// mutation the caller asked for.
type Store struct {
	storage Storage
	lg      *zap.Logger
}

// NewStore creates a Store backed by the given Storage.
func NewStore(storage Storage, lg *zap.Logger) *Store {
	return &Store{
		storage: storage,
		lg:      lg.Named("cart"),
	}
}

// Items returns the current items of the cart identified by cartID.
// A missing or undecodable blob yields an empty cart, never an error.
func (s *Store) Items(ctx context.Context, cartID string) []Item {
	blob, err := s.storage.Load(ctx, cartID)
	if err != nil {
		s.lg.Warn("cart load failed, treating as empty",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return nil
	}
	if len(blob) == 0 {
		return nil
	}

	var items []Item
	if err := json.Unmarshal(blob, &items); err != nil {
		s.lg.Warn("corrupt cart blob, treating as empty",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return nil
	}
	return items
}

// AddItem merges the snapshot into the cart: an existing line with the same
// part ID gains quantity, otherwise a new line is appended with an empty
// comment. Quantities below one are treated as one. It returns the updated
// item list.
func (s *Store) AddItem(ctx context.Context, cartID string, snap Snapshot, quantity int) []Item {
	if quantity < 1 {
		quantity = 1
	}

	items := s.Items(ctx, cartID)
	merged := false
	for i := range items {
		if items[i].PartID == snap.PartID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, Item{
			PartID:      snap.PartID,
			PartName:    snap.PartName,
			PartCode:    snap.PartCode,
			MachineName: snap.MachineName,
			Quantity:    quantity,
			UnitPrice:   snap.UnitPrice,
			ImageURL:    snap.ImageURL,
			Comment:     "",
		})
	}

	s.persist(ctx, cartID, items)
	return items
}

// SetQuantity sets the quantity for the line with the given part ID.
// A quantity of zero or less removes the line; an absent part ID is a no-op.
func (s *Store) SetQuantity(ctx context.Context, cartID, partID string, quantity int) []Item {
	items := s.Items(ctx, cartID)

	idx := -1
	for i := range items {
		if items[i].PartID == partID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return items
	}

	if quantity <= 0 {
		items = append(items[:idx], items[idx+1:]...)
	} else {
		items[idx].Quantity = quantity
	}

	s.persist(ctx, cartID, items)
	return items
}

// SetComment replaces the free-text specification note on the line with the
// given part ID. An absent part ID is a no-op.
func (s *Store) SetComment(ctx context.Context, cartID, partID, comment string) []Item {
	items := s.Items(ctx, cartID)

	for i := range items {
		if items[i].PartID == partID {
			items[i].Comment = comment
			s.persist(ctx, cartID, items)
			break
		}
	}
	return items
}

// RemoveItem removes the line with the given part ID. Equivalent to
// SetQuantity with zero.
func (s *Store) RemoveItem(ctx context.Context, cartID, partID string) []Item {
	return s.SetQuantity(ctx, cartID, partID, 0)
}

// Clear empties the cart. Called after a successful order submission.
func (s *Store) Clear(ctx context.Context, cartID string) {
	if err := s.storage.Delete(ctx, cartID); err != nil {
		s.lg.Warn("cart clear failed",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
	}
}

// persist rewrites the full serialized cart. Failures are logged, not
// returned: the caller already holds the updated items.
func (s *Store) persist(ctx context.Context, cartID string, items []Item) {
	blob, err := json.Marshal(items)
	if err != nil {
		s.lg.Error("cart marshal failed",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return
	}
	if err := s.storage.Save(ctx, cartID, blob); err != nil {
		s.lg.Warn("cart persist failed",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
	}
}

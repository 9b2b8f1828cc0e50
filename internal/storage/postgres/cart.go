package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickparts/storefront/internal/domain/cart"
)

var _ cart.Storage = (*CartStorage)(nil)

// CartStorage persists one serialized item blob per cart token in the carts
// table. The cart store rewrites the full blob on every mutation.
type CartStorage struct {
	pool *pgxpool.Pool
}

// NewCartStorage returns a CartStorage that uses the given pool.
func NewCartStorage(pool *pgxpool.Pool) *CartStorage {
	return &CartStorage{pool: pool}
}

const loadCartSQL = `SELECT items FROM carts WHERE id = $1`

// Load returns the stored blob for cartID, or (nil, nil) when no cart row
// exists yet.
func (s *CartStorage) Load(ctx context.Context, cartID string) ([]byte, error) {
	rows, err := s.pool.Query(ctx, loadCartSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("loading cart %q: %w", cartID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var blob []byte
	if err := rows.Scan(&blob); err != nil {
		return nil, fmt.Errorf("scanning cart %q: %w", cartID, err)
	}
	return blob, nil
}

const saveCartSQL = `INSERT INTO carts (id, items, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`

// Save rewrites the serialized item list for cartID.
func (s *CartStorage) Save(ctx context.Context, cartID string, blob []byte) error {
	if _, err := s.pool.Exec(ctx, saveCartSQL, cartID, blob); err != nil {
		return fmt.Errorf("saving cart %q: %w", cartID, err)
	}
	return nil
}

const deleteCartSQL = `DELETE FROM carts WHERE id = $1`

// Delete removes the cart row for cartID.
func (s *CartStorage) Delete(ctx context.Context, cartID string) error {
	if _, err := s.pool.Exec(ctx, deleteCartSQL, cartID); err != nil {
		return fmt.Errorf("deleting cart %q: %w", cartID, err)
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quickparts/storefront/internal/domain/cart"
	"github.com/quickparts/storefront/internal/domain/order"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// customer block and the frozen cart items are serialized to JSONB.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// customerJSON is the JSONB shape of the customer block.
type customerJSON struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
}

const createOrderSQL = `INSERT INTO orders
	(id, customer, items, total_amount, status, idempotency_key, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	customer, err := json.Marshal(customerJSON(o.Customer))
	if err != nil {
		return fmt.Errorf("marshaling customer: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, customer, items, o.TotalAmount, string(o.Status), o.IdempotencyKey, o.CreatedAt,
	)
	if err != nil {
		// The partial unique index on idempotency_key is the durable
		// duplicate guard; surface it as the domain sentinel.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && o.IdempotencyKey != "" {
			return errors.Wrapf(order.ErrDuplicateIdempotencyKey, "creating order %q", o.ID)
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

const getOrderSQL = `SELECT id, customer, items, total_amount, status, idempotency_key, created_at
	FROM orders WHERE id = $1`

// GetByID returns a single order by its identifier. It returns
// order.ErrNotFound when no matching order exists.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

const getOrderByKeySQL = `SELECT id, customer, items, total_amount, status, idempotency_key, created_at
	FROM orders WHERE idempotency_key = $1`

// GetByIdempotencyKey returns the order created with the given idempotency
// key, or order.ErrNotFound.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderByKeySQL, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order by idempotency key: %w", err)
	}
	return o, nil
}

const listOrdersSQL = `SELECT id, customer, items, total_amount, status, idempotency_key, created_at
	FROM orders ORDER BY created_at DESC`

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

const updateStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

// UpdateStatus sets the status of one order. It returns order.ErrNotFound
// when no row was updated.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// scanOrder reads one order row, decoding the JSONB customer and item
// columns.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o            order.Order
		customerBlob []byte
		itemsBlob    []byte
		total        decimal.Decimal
		status       string
	)
	if err := row.Scan(&o.ID, &customerBlob, &itemsBlob, &total, &status, &o.IdempotencyKey, &o.CreatedAt); err != nil {
		return nil, err
	}

	var customer customerJSON
	if err := json.Unmarshal(customerBlob, &customer); err != nil {
		return nil, fmt.Errorf("unmarshaling customer: %w", err)
	}
	var items []cart.Item
	if err := json.Unmarshal(itemsBlob, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}

	o.Customer = order.CustomerInfo(customer)
	o.Items = items
	o.TotalAmount = total
	o.Status = order.Status(status)
	return &o, nil
}

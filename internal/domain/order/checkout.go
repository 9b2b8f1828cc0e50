package order

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/domain/cart"
)

// Bloom filter sizing for the idempotency fast path. A negative answer means
// the key was definitely never submitted, so the database lookup is skipped.
const (
	idempotencyCapacity = 1_000_000
	idempotencyFPR      = 0.001
)

// Notifier is told about successfully placed orders. Failures are logged and
// never affect the submission result.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, *Order) error { return nil }

// Checkout drives one submission attempt through
// validating -> submitting -> succeeded/failed.
//
// Invariants: the order repository is called at most once per attempt (no
// automatic retry), the cart is cleared only after a successful create, and
// a failed create leaves the cart untouched for a manual retry.
type Checkout struct {
	carts    *cart.Store
	orders   Repository
	notifier Notifier
	lg       *zap.Logger

	mu       sync.Mutex
	seen     *bloom.BloomFilter
	inflight map[string]struct{}
}

// NewCheckout creates a Checkout over the given cart store and order
// repository. Pass NopNotifier when no notification channel is configured.
func NewCheckout(carts *cart.Store, orders Repository, notifier Notifier, lg *zap.Logger) *Checkout {
	return &Checkout{
		carts:    carts,
		orders:   orders,
		notifier: notifier,
		lg:       lg.Named("checkout"),
		seen:     bloom.NewWithEstimates(idempotencyCapacity, idempotencyFPR),
		inflight: make(map[string]struct{}),
	}
}

// Submit validates the customer info, freezes the cart into an order, and
// persists it exactly once. On success the cart is cleared and the order
// returned; on any failure the cart is preserved.
//
// A non-empty idempotencyKey makes retried submissions safe: a key that was
// already used returns the previously created order instead of creating a
// second one. Concurrent submissions for the same cart are rejected with
// ErrSubmissionInFlight.
func (c *Checkout) Submit(ctx context.Context, cartID string, customer CustomerInfo, idempotencyKey string) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if !c.begin(cartID) {
		return nil, ErrSubmissionInFlight
	}
	defer c.end(cartID)

	// The duplicate check runs before the empty-cart check: a retry after a
	// lost success response arrives with an already-cleared cart and must
	// still get the original order back.
	if idempotencyKey != "" && c.maybeSeen(idempotencyKey) {
		// Bloom positives may be false; the orders table decides.
		prev, err := c.orders.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			c.lg.Info("duplicate submission, returning existing order",
				zap.String("order_id", prev.ID),
				zap.String("idempotency_key", idempotencyKey),
			)
			return prev, nil
		}
	}

	items := c.carts.Items(ctx, cartID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		ID:             uuid.New().String(),
		Customer:       customer,
		Items:          items,
		TotalAmount:    cart.Total(items),
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	if err := c.orders.Create(ctx, o); err != nil {
		// The bloom filter is process-local and starts empty, so after a
		// restart a duplicate key reaches Create and trips the unique
		// index. The existing order still wins.
		if idempotencyKey != "" && errors.Is(err, ErrDuplicateIdempotencyKey) {
			prev, lookupErr := c.orders.GetByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil {
				c.markSeen(idempotencyKey)
				c.lg.Info("duplicate submission, returning existing order",
					zap.String("order_id", prev.ID),
					zap.String("idempotency_key", idempotencyKey),
				)
				return prev, nil
			}
		}
		return nil, &SubmissionError{Err: err}
	}

	if idempotencyKey != "" {
		c.markSeen(idempotencyKey)
	}

	// The order is persisted; everything past this point is best-effort.
	c.carts.Clear(ctx, cartID)

	c.lg.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("customer", o.Customer.Name),
		zap.Int("lines", len(o.Items)),
		zap.String("total", o.TotalAmount.String()),
	)

	go c.notify(o)

	return o, nil
}

// notify delivers the new-order notification outside the request lifecycle.
func (c *Checkout) notify(o *Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.notifier.OrderCreated(ctx, o); err != nil {
		c.lg.Warn("order notification failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}

// begin marks cartID as having a submission in flight. It returns false when
// one is already running.
func (c *Checkout) begin(cartID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[cartID]; busy {
		return false
	}
	c.inflight[cartID] = struct{}{}
	return true
}

func (c *Checkout) end(cartID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, cartID)
}

func (c *Checkout) maybeSeen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen.TestString(key)
}

func (c *Checkout) markSeen(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen.AddString(key)
}

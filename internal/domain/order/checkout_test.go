package order

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/domain/cart"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	mu        sync.Mutex
	createErr error
	created   []*Order
	byIdemKey map[string]*Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, o)
	if o.IdempotencyKey != "" {
		if m.byIdemKey == nil {
			m.byIdemKey = make(map[string]*Order)
		}
		m.byIdemKey[o.IdempotencyKey] = o
	}
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) GetByIdempotencyKey(_ context.Context, key string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.byIdemKey[key]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, _ Status) error { return nil }

func (m *mockOrderRepo) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockNotifier) OrderCreated(_ context.Context, _ *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seededCart(t *testing.T, items ...cart.Snapshot) (*cart.Store, string) {
	t.Helper()
	store := cart.NewStore(cart.NewMemoryStorage(), zap.NewNop())
	for _, s := range items {
		store.AddItem(context.Background(), "c1", s, 1)
	}
	return store, "c1"
}

func part(id, machine, price string) cart.Snapshot {
	return cart.Snapshot{
		PartID:      id,
		PartName:    "Part " + id,
		PartCode:    "C-" + id,
		MachineName: machine,
		UnitPrice:   d(price),
	}
}

func validCustomer() CustomerInfo {
	return CustomerInfo{Name: "Ravi", Phone: "9999999999"}
}

// --- Tests ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		customer  CustomerInfo
		wantField string
	}{
		{name: "empty name", customer: CustomerInfo{Phone: "9999999999"}, wantField: "name"},
		{name: "whitespace name", customer: CustomerInfo{Name: "   ", Phone: "9999999999"}, wantField: "name"},
		{name: "empty phone", customer: CustomerInfo{Name: "Ravi"}, wantField: "phone"},
		{name: "whitespace phone", customer: CustomerInfo{Name: "Ravi", Phone: "\t"}, wantField: "phone"},
		{name: "valid", customer: CustomerInfo{Name: "Ravi", Phone: "9999999999"}},
		{name: "optional fields may be empty", customer: CustomerInfo{Name: "Ravi", Phone: "1", Email: "", Company: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.customer.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestSubmit_ValidationBlocksBeforeAnyCall(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	repo := &mockOrderRepo{}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	_, err := co.Submit(context.Background(), cartID, CustomerInfo{Phone: "123"}, "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, repo.createCount())
	// Cart unchanged.
	assert.Len(t, carts.Items(context.Background(), cartID), 1)
}

func TestSubmit_EmptyCart(t *testing.T) {
	carts, _ := seededCart(t)
	co := NewCheckout(carts, &mockOrderRepo{}, NopNotifier{}, zap.NewNop())

	_, err := co.Submit(context.Background(), "empty-cart", validCustomer(), "")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_Success(t *testing.T) {
	carts, cartID := seededCart(t,
		part("P1", "Tractor", "500"),
		part("P2", "Tractor", "120.50"),
		part("P3", "Harvester", "75"),
	)
	repo := &mockOrderRepo{}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	o, err := co.Submit(context.Background(), cartID, validCustomer(), "")

	require.NoError(t, err)
	require.NotNil(t, o)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Len(t, o.Items, 3)
	assert.True(t, d("695.50").Equal(o.TotalAmount))
	assert.Equal(t, 1, repo.createCount())

	// Success clears the cart.
	assert.Empty(t, carts.Items(context.Background(), cartID))

	// Grouping of the frozen items matches the cart grouping contract.
	groups := o.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Tractor", groups[0].MachineName)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Harvester", groups[1].MachineName)
}

func TestSubmit_RepositoryFailurePreservesCart(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	repo := &mockOrderRepo{createErr: errors.New("connection refused")}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	_, err := co.Submit(context.Background(), cartID, validCustomer(), "")

	var sErr *SubmissionError
	require.ErrorAs(t, err, &sErr)
	assert.ErrorContains(t, err, "connection refused")

	// Cart intact for a manual retry.
	assert.Len(t, carts.Items(context.Background(), cartID), 1)
}

func TestSubmit_RetryAfterFailureSucceeds(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	repo := &mockOrderRepo{createErr: errors.New("boom")}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	_, err := co.Submit(context.Background(), cartID, validCustomer(), "")
	require.Error(t, err)

	repo.createErr = nil
	o, err := co.Submit(context.Background(), cartID, validCustomer(), "")
	require.NoError(t, err)
	assert.Len(t, o.Items, 1)
	assert.Empty(t, carts.Items(context.Background(), cartID))
}

func TestSubmit_IdempotencyKeyReturnsExistingOrder(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	repo := &mockOrderRepo{}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	first, err := co.Submit(context.Background(), cartID, validCustomer(), "key-1")
	require.NoError(t, err)
	require.Empty(t, carts.Items(context.Background(), cartID))

	// A client that never saw the response retries with the same key. The
	// cart was already cleared by the first attempt, so the retry must hit
	// the duplicate path, not the empty-cart path.
	second, err := co.Submit(context.Background(), cartID, validCustomer(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.createCount())
}

func TestSubmit_DuplicateKeyOnCreateReturnsExistingOrder(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	existing := &Order{ID: "existing-order", IdempotencyKey: "key-1"}
	repo := &mockOrderRepo{
		createErr: ErrDuplicateIdempotencyKey,
		byIdemKey: map[string]*Order{"key-1": existing},
	}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	// The key is in the database but not in this process's memory, as after
	// a restart. Create trips the unique index and the existing order wins.
	o, err := co.Submit(context.Background(), cartID, validCustomer(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, o.ID)
	assert.Equal(t, 0, repo.createCount())
}

func TestSubmit_DistinctKeysCreateDistinctOrders(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	repo := &mockOrderRepo{}
	co := NewCheckout(carts, repo, NopNotifier{}, zap.NewNop())

	first, err := co.Submit(context.Background(), cartID, validCustomer(), "key-1")
	require.NoError(t, err)

	carts.AddItem(context.Background(), cartID, part("P2", "Tractor", "10"), 1)
	second, err := co.Submit(context.Background(), cartID, validCustomer(), "key-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.createCount())
}

func TestSubmit_NotifierFailureDoesNotAffectResult(t *testing.T) {
	carts, cartID := seededCart(t, part("P1", "Tractor", "500"))
	notifier := &mockNotifier{err: errors.New("smtp down")}
	co := NewCheckout(carts, &mockOrderRepo{}, notifier, zap.NewNop())

	o, err := co.Submit(context.Background(), cartID, validCustomer(), "")
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestSubmit_InFlightGuard(t *testing.T) {
	co := NewCheckout(
		cart.NewStore(cart.NewMemoryStorage(), zap.NewNop()),
		&mockOrderRepo{},
		NopNotifier{},
		zap.NewNop(),
	)

	require.True(t, co.begin("c1"))
	_, err := co.Submit(context.Background(), "c1", validCustomer(), "")
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	co.end("c1")
	// Once released, the cart is just empty again.
	_, err = co.Submit(context.Background(), "c1", validCustomer(), "")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}

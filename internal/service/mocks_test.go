package service_test

import (
	"context"
	"sync"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/pkg/trm"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockLedger struct{ mock.Mock }

func (m *mockLedger) SaveAddress(ctx context.Context, a entities.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockLedger) SaveOrder(ctx context.Context, o entities.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockLedger) SaveOrderItems(ctx context.Context, items []entities.OrderItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *mockLedger) SavePayment(ctx context.Context, p entities.Payment) error {
	return m.Called(ctx, p).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockCartStore struct{ mock.Mock }

func (m *mockCartStore) AddItem(ctx context.Context, userID, itemID string, qty int64) (int64, error) {
	args := m.Called(ctx, userID, itemID, qty)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCartStore) RemoveItem(ctx context.Context, userID, itemID string) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartStore) ViewCart(ctx context.Context, userID string) (map[string]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockCartStore) ClearCart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockPricer struct{ mock.Mock }

func (m *mockPricer) Price(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockPromo struct{ mock.Mock }

func (m *mockPromo) Evaluate(code string, subtotal decimal.Decimal) decimal.Decimal {
	args := m.Called(code, subtotal)
	return args.Get(0).(decimal.Decimal)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) OrderPlaced(ctx context.Context, order entities.Order) error {
	return m.Called(ctx, order).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status entities.PaymentStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(key string) ([]byte, bool) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *mockCache) Set(key string, value []byte) {
	m.Called(key, value)
}

func (m *mockCache) Remove(key string) {
	m.Called(key)
}

// fakeTxManager runs callbacks directly, with no real transaction
// underneath.
type fakeTxManager struct{}

func (fakeTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, nopTx{}, nil
}

func (fakeTxManager) Do(ctx context.Context, cb func(ctx context.Context) error) error {
	return cb(ctx)
}

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// drainableCart is a stateful in-memory cart used by the concurrency
// test: the first successful checkout drains it for everyone else.
type drainableCart struct {
	mu    sync.Mutex
	items map[string]int64
}

func (c *drainableCart) AddItem(_ context.Context, _, itemID string, qty int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[itemID] += qty
	return c.items[itemID], nil
}

func (c *drainableCart) RemoveItem(_ context.Context, _, itemID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[itemID]
	delete(c.items, itemID)
	return ok, nil
}

func (c *drainableCart) ViewCart(_ context.Context, _ string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(map[string]int64, len(c.items))
	for k, v := range c.items {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (c *drainableCart) ClearCart(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]int64)
	return nil
}

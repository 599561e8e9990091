package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/internal/promo"
	"github.com/grubline/order-service/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var checkoutInput = service.CheckoutInput{
	Street:        "1 Main St",
	City:          "Springfield",
	State:         "IL",
	ZipCode:       "62701",
	Country:       "US",
	PaymentMethod: service.PaymentMethodCard,
	CardNumber:    "4242424242424242",
	ExpMonth:      12,
	ExpYear:       2027,
	PromoCode:     "DISCOUNT10",
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	userID := uuid.New()
	pizzaID := uuid.New()

	ledger := new(mockLedger)
	users := new(mockUsers)
	cart := new(mockCartStore)
	pricer := new(mockPricer)
	publisher := new(mockPublisher)

	users.On("UserExists", mock.Anything, userID).Return(true, nil).Once()
	cart.On("ViewCart", mock.Anything, userID.String()).
		Return(map[string]int64{pizzaID.String(): 2}, nil).Once()
	pricer.On("Price", mock.Anything, pizzaID).Return(decimal.NewFromInt(10), nil).Once()

	var savedOrder entities.Order
	ledger.On("SaveAddress", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedOrder = args.Get(1).(entities.Order) }).
		Return(nil).Once()
	ledger.On("SaveOrderItems", mock.Anything, mock.Anything).Return(nil).Once()

	var savedPayment entities.Payment
	ledger.On("SavePayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedPayment = args.Get(1).(entities.Payment) }).
		Return(nil).Once()

	cart.On("ClearCart", mock.Anything, userID.String()).Return(nil).Once()
	publisher.On("OrderPlaced", mock.Anything, mock.Anything).Return(nil).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, promo.NewStaticEvaluator(), publisher, time.Second)

	order, err := svc.Checkout(context.Background(), userID, checkoutInput)
	require.NoError(t, err)

	// subtotal 20, 10% promo
	assert.True(t, decimal.NewFromInt(18).Equal(order.TotalPrice), "total: %s", order.TotalPrice)
	assert.True(t, decimal.NewFromInt(2).Equal(order.Discount), "discount: %s", order.Discount)
	assert.Equal(t, entities.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, entities.OrderStatusProcessing, order.OrderStatus)

	require.Len(t, order.Items, 1)
	assert.Equal(t, pizzaID, order.Items[0].ItemID)
	assert.Equal(t, int64(2), order.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(order.Items[0].Price))

	// what went to the ledger is what came back
	assert.Equal(t, order.OrderID, savedOrder.OrderID)

	// only a derived card footprint is persisted
	assert.Equal(t, "4242", savedPayment.CardLast4)
	assert.Equal(t, entities.CardTypeVisa, savedPayment.CardType)

	ledger.AssertExpectations(t)
	cart.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_Checkout_EmptyCart(t *testing.T) {
	userID := uuid.New()

	ledger := new(mockLedger)
	users := new(mockUsers)
	cart := new(mockCartStore)
	pricer := new(mockPricer)

	users.On("UserExists", mock.Anything, userID).Return(true, nil).Once()
	cart.On("ViewCart", mock.Anything, userID.String()).
		Return(map[string]int64{}, nil).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, promo.NewStaticEvaluator(), nil, time.Second)

	_, err := svc.Checkout(context.Background(), userID, checkoutInput)
	assert.ErrorIs(t, err, entities.ErrEmptyCart)

	// nothing durable was touched, nothing cleared
	ledger.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	cart.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_UnknownUser(t *testing.T) {
	userID := uuid.New()

	users := new(mockUsers)
	users.On("UserExists", mock.Anything, userID).Return(false, nil).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		new(mockLedger), users, new(mockCartStore), new(mockPricer),
		promo.NewStaticEvaluator(), nil, time.Second)

	_, err := svc.Checkout(context.Background(), userID, checkoutInput)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
}

func TestCheckoutService_Checkout_LedgerFailureKeepsCart(t *testing.T) {
	userID := uuid.New()
	pizzaID := uuid.New()
	dbErr := errors.New("db error")

	ledger := new(mockLedger)
	users := new(mockUsers)
	cart := new(mockCartStore)
	pricer := new(mockPricer)

	users.On("UserExists", mock.Anything, userID).Return(true, nil).Once()
	cart.On("ViewCart", mock.Anything, userID.String()).
		Return(map[string]int64{pizzaID.String(): 1}, nil).Once()
	pricer.On("Price", mock.Anything, pizzaID).Return(decimal.NewFromInt(10), nil).Once()

	// order row lands, item insert blows up, the tx rolls back
	ledger.On("SaveAddress", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrder", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrderItems", mock.Anything, mock.Anything).Return(dbErr).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, promo.NewStaticEvaluator(), nil, time.Second)

	_, err := svc.Checkout(context.Background(), userID, checkoutInput)
	assert.ErrorIs(t, err, entities.ErrLedgerWrite)
	assert.ErrorIs(t, err, dbErr)

	ledger.AssertNotCalled(t, "SavePayment", mock.Anything, mock.Anything)
	cart.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_DiscountClamped(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	ledger := new(mockLedger)
	users := new(mockUsers)
	cart := new(mockCartStore)
	pricer := new(mockPricer)
	evaluator := new(mockPromo)

	users.On("UserExists", mock.Anything, userID).Return(true, nil).Once()
	cart.On("ViewCart", mock.Anything, userID.String()).
		Return(map[string]int64{itemID.String(): 1}, nil).Once()
	pricer.On("Price", mock.Anything, itemID).Return(decimal.NewFromInt(100), nil).Once()

	// evaluator promises more than the order is worth
	evaluator.On("Evaluate", "MEGA", mock.Anything).
		Return(decimal.NewFromInt(150)).Once()

	ledger.On("SaveAddress", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrder", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrderItems", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SavePayment", mock.Anything, mock.Anything).Return(nil).Once()
	cart.On("ClearCart", mock.Anything, userID.String()).Return(nil).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, evaluator, nil, time.Second)

	in := checkoutInput
	in.PromoCode = "MEGA"

	order, err := svc.Checkout(context.Background(), userID, in)
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.Zero), "total: %s", order.TotalPrice)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(100)), "discount: %s", order.Discount)
}

func TestCheckoutService_Checkout_CacheClearFailureIsNotFatal(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	ledger := new(mockLedger)
	users := new(mockUsers)
	cart := new(mockCartStore)
	pricer := new(mockPricer)

	users.On("UserExists", mock.Anything, userID).Return(true, nil).Once()
	cart.On("ViewCart", mock.Anything, userID.String()).
		Return(map[string]int64{itemID.String(): 1}, nil).Once()
	pricer.On("Price", mock.Anything, itemID).Return(decimal.NewFromInt(10), nil).Once()

	ledger.On("SaveAddress", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrder", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SaveOrderItems", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("SavePayment", mock.Anything, mock.Anything).Return(nil).Once()

	// the order is already durable, a lost cache clear is only a warning
	cart.On("ClearCart", mock.Anything, userID.String()).
		Return(errors.New("redis down")).Once()

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, promo.NewStaticEvaluator(), nil, time.Second)

	order, err := svc.Checkout(context.Background(), userID, checkoutInput)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.OrderID)
}

// countingLedger accepts everything and counts committed orders.
type countingLedger struct{ saves atomic.Int64 }

func (c *countingLedger) SaveAddress(context.Context, entities.Address) error { return nil }
func (c *countingLedger) SaveOrder(context.Context, entities.Order) error {
	c.saves.Add(1)
	return nil
}
func (c *countingLedger) SaveOrderItems(context.Context, []entities.OrderItem) error { return nil }
func (c *countingLedger) SavePayment(context.Context, entities.Payment) error        { return nil }

func TestCheckoutService_Checkout_ConcurrentCheckoutsPlaceOneOrder(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	ledger := new(countingLedger)
	users := new(mockUsers)
	pricer := new(mockPricer)

	users.On("UserExists", mock.Anything, userID).Return(true, nil)
	pricer.On("Price", mock.Anything, itemID).Return(decimal.NewFromInt(10), nil)

	cart := &drainableCart{items: map[string]int64{itemID.String(): 2}}

	svc := service.NewCheckoutService(discardLogger(), fakeTxManager{},
		ledger, users, cart, pricer, promo.NewStaticEvaluator(), nil, time.Second)

	const attempts = 4
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), userID, checkoutInput)
		}(i)
	}
	wg.Wait()

	var placed, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			placed++
		case errors.Is(err, entities.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, placed, "exactly one checkout should win the cart")
	assert.Equal(t, attempts-1, empty)
	assert.Equal(t, int64(1), ledger.saves.Load())
}

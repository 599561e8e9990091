package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/pkg/keylock"
	"github.com/grubline/order-service/pkg/trm"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentMethodCard = "card"

type OrderLedger interface {
	// All four run inside one transaction driven by trm.Manager.
	SaveAddress(ctx context.Context, a entities.Address) error
	SaveOrder(ctx context.Context, o entities.Order) error
	SaveOrderItems(ctx context.Context, items []entities.OrderItem) error
	SavePayment(ctx context.Context, p entities.Payment) error
}

type UserDirectory interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type PromoEvaluator interface {
	Evaluate(code string, subtotal decimal.Decimal) decimal.Decimal
}

type OrderPublisher interface {
	OrderPlaced(ctx context.Context, order entities.Order) error
}

// CheckoutInput carries the validated request fields. The raw card
// number only lives here transiently; the ledger never sees it.
type CheckoutInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string

	PaymentMethod string
	CardNumber    string
	ExpMonth      int
	ExpYear       int

	PromoCode string
}

type checkoutService struct {
	logger    *slog.Logger
	txManager trm.Manager
	ledger    OrderLedger
	users     UserDirectory
	cart      CartStore
	pricer    Pricer
	promo     PromoEvaluator
	publisher OrderPublisher

	locks         *keylock.KeyedMutex
	ledgerTimeout time.Duration
}

func NewCheckoutService(
	logger *slog.Logger,
	txManager trm.Manager,
	ledger OrderLedger,
	users UserDirectory,
	cart CartStore,
	pricer Pricer,
	promo PromoEvaluator,
	publisher OrderPublisher,
	ledgerTimeout time.Duration,
) *checkoutService {
	return &checkoutService{
		logger:        logger.With(slog.String("service", "checkout")),
		txManager:     txManager,
		ledger:        ledger,
		users:         users,
		cart:          cart,
		pricer:        pricer,
		promo:         promo,
		publisher:     publisher,
		locks:         keylock.New(),
		ledgerTimeout: ledgerTimeout,
	}
}

// Checkout converts the user's cart into a durable order. The cache
// cart is cleared only after the transaction commits; on any ledger
// failure the cart is left intact so the request can be retried.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, in CheckoutInput) (entities.Order, error) {
	// One checkout per user at a time, otherwise two requests could
	// both drain the same cart snapshot into two orders.
	key := userID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !exists {
		return entities.Order{}, entities.ErrUserNotFound
	}

	snapshot, err := s.cart.ViewCart(ctx, key)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(snapshot) == 0 {
		return entities.Order{}, entities.ErrEmptyCart
	}

	order, err := s.priceOrder(ctx, userID, snapshot, in.PromoCode)
	if err != nil {
		return entities.Order{}, err
	}

	address := entities.Address{
		AddressID: uuid.New(),
		UserID:    userID,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
	}
	payment := buildPayment(userID, in)

	txCtx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	err = s.txManager.Do(txCtx, func(ctx context.Context) error {
		if err := s.ledger.SaveAddress(ctx, address); err != nil {
			return err
		}
		if err := s.ledger.SaveOrder(ctx, order); err != nil {
			return err
		}
		if err := s.ledger.SaveOrderItems(ctx, order.Items); err != nil {
			return err
		}
		return s.ledger.SavePayment(ctx, payment)
	})
	if err != nil {
		// rolled back in full; a timed-out commit counts as failed
		return entities.Order{}, fmt.Errorf("%w: %w", entities.ErrLedgerWrite, err)
	}

	// From here on the order is authoritative. The cart copy is a
	// draft we no longer need, so losing the cleanup is only worth a
	// warning.
	if err := s.cart.ClearCart(ctx, key); err != nil {
		s.logger.Warn("order placed but cart not cleared",
			slog.String("order_id", order.OrderID.String()),
			slog.Any("error", err),
		)
	}

	if s.publisher != nil {
		if err := s.publisher.OrderPlaced(ctx, order); err != nil {
			s.logger.Warn("failed to publish order placed event",
				slog.String("order_id", order.OrderID.String()),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("order placed",
		slog.String("order_id", order.OrderID.String()),
		slog.String("user_id", userID.String()),
		slog.String("total", order.TotalPrice.String()),
	)
	return order, nil
}

func (s *checkoutService) priceOrder(ctx context.Context, userID uuid.UUID, snapshot map[string]int64, promoCode string) (entities.Order, error) {
	orderID := uuid.New()
	subtotal := decimal.Zero
	items := make([]entities.OrderItem, 0, len(snapshot))

	for rawID, qty := range snapshot {
		itemID, err := uuid.Parse(rawID)
		if err != nil {
			return entities.Order{}, fmt.Errorf("corrupt cart entry %q: %w", rawID, err)
		}

		price, err := s.pricer.Price(ctx, itemID)
		if err != nil {
			return entities.Order{}, err
		}

		items = append(items, entities.OrderItem{
			OrderItemID: uuid.New(),
			OrderID:     orderID,
			ItemID:      itemID,
			Quantity:    qty,
			Price:       price,
		})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(qty)))
	}

	discount := s.promo.Evaluate(promoCode, subtotal)
	if discount.GreaterThan(subtotal) {
		// never trust an evaluator to keep the total non-negative
		discount = subtotal
	}

	now := time.Now()
	return entities.Order{
		OrderID:       orderID,
		UserID:        userID,
		TotalPrice:    subtotal.Sub(discount),
		Discount:      discount,
		PaymentStatus: entities.PaymentStatusPending,
		OrderStatus:   entities.OrderStatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}, nil
}

func buildPayment(userID uuid.UUID, in CheckoutInput) entities.Payment {
	p := entities.Payment{
		PaymentID: uuid.New(),
		UserID:    userID,
		CardType:  entities.CardTypeOther,
	}

	if in.PaymentMethod == PaymentMethodCard {
		p.CardLast4 = entities.CardLast4(in.CardNumber)
		p.CardType = entities.CardTypeFromNumber(in.CardNumber)
		p.ExpMonth = in.ExpMonth
		p.ExpYear = in.ExpYear
	}
	return p
}

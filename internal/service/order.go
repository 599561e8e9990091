package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/pkg/utils"

	"github.com/google/uuid"
)

type OrderRepo interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status entities.PaymentStatus) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

type orderService struct {
	logger *slog.Logger
	repo   OrderRepo
	cache  Cache
}

func NewOrderService(logger *slog.Logger, repo OrderRepo, cache Cache) *orderService {
	return &orderService{
		logger: logger.With(slog.String("service", "order")),
		repo:   repo,
		cache:  cache,
	}
}

var readRetry = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  3,
	Multiplier:   2,
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	key := orderID.String()

	if data, ok := s.cache.Get(key); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err == nil {
			return order, nil
		}
		// corrupt entry, fall through to the repo
		s.logger.Error("failed to unmarshal cached order", slog.String("order_id", key))
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.repo.GetOrderByID(ctx, orderID)
		return err
	}
	if err := utils.Retry(readRetry, fn, entities.ErrOrderNotFound); err != nil {
		return entities.Order{}, err
	}

	if data, err := order.Marshal(); err == nil {
		s.cache.Set(key, data)
	} else {
		s.logger.Error("failed to marshal order", slog.String("order_id", key), slog.Any("error", err))
	}
	return order, nil
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CompletePayment marks an order as paid. The real gateway integration
// is stubbed; this is the hook its callback would land on.
func (s *orderService) CompletePayment(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, entities.PaymentStatusCompleted); err != nil {
		return entities.Order{}, err
	}

	// drop the stale cached copy before re-reading
	s.cache.Remove(orderID.String())

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.Info("payment completed", slog.String("order_id", orderID.String()))
	return order, nil
}

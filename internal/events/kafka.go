package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/grubline/order-service/internal/config"
	"github.com/grubline/order-service/internal/entities"

	"github.com/segmentio/kafka-go"
)

// orderPlacedEvent is the wire shape consumed by fulfillment and
// notification services downstream.
type orderPlacedEvent struct {
	OrderID       string           `json:"order_id"`
	UserID        string           `json:"user_id"`
	TotalPrice    string           `json:"total_price"`
	Discount      string           `json:"discount"`
	PaymentStatus string           `json:"payment_status"`
	OrderStatus   string           `json:"order_status"`
	PlacedAt      time.Time        `json:"placed_at"`
	Items         []orderItemEvent `json:"items"`
}

type orderItemEvent struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(logger *slog.Logger, cfg config.Kafka) *kafkaPublisher {
	return &kafkaPublisher{
		logger: logger.With(slog.String("publisher", "kafka")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

// OrderPlaced publishes an event for a committed order. Delivery is
// best-effort from the checkout path's point of view; the order itself
// is already durable.
func (p *kafkaPublisher) OrderPlaced(ctx context.Context, order entities.Order) error {
	event := orderPlacedEvent{
		OrderID:       order.OrderID.String(),
		UserID:        order.UserID.String(),
		TotalPrice:    order.TotalPrice.String(),
		Discount:      order.Discount.String(),
		PaymentStatus: string(order.PaymentStatus),
		OrderStatus:   string(order.OrderStatus),
		PlacedAt:      order.CreatedAt,
		Items:         make([]orderItemEvent, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		event.Items = append(event.Items, orderItemEvent{
			ItemID:   it.ItemID.String(),
			Quantity: it.Quantity,
			Price:    it.Price.String(),
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	// Writer already retries internally
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.UserID.String()),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

package repo

import (
	"time"

	"github.com/grubline/order-service/internal/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID       uuid.UUID       `db:"order_id"`
	UserID        uuid.UUID       `db:"user_id"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	Discount      decimal.Decimal `db:"discount"`
	PaymentStatus string          `db:"payment_status"`
	OrderStatus   string          `db:"order_status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type OrderItem struct {
	OrderItemID uuid.UUID       `db:"order_item_id"`
	OrderID     uuid.UUID       `db:"order_id"`
	ItemID      uuid.UUID       `db:"item_id"`
	Quantity    int64           `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		OrderItemID: i.OrderItemID,
		OrderID:     i.OrderID,
		ItemID:      i.ItemID,
		Quantity:    i.Quantity,
		Price:       i.Price,
	}
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		OrderID:       o.OrderID,
		UserID:        o.UserID,
		TotalPrice:    o.TotalPrice,
		Discount:      o.Discount,
		PaymentStatus: entities.PaymentStatus(o.PaymentStatus),
		OrderStatus:   entities.OrderStatus(o.OrderStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

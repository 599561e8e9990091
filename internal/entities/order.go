package entities

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
)

type OrderItem struct {
	OrderItemID uuid.UUID
	OrderID     uuid.UUID
	ItemID      uuid.UUID
	Quantity    int64

	// Unit price captured at checkout time. Later catalog price
	// changes never touch placed orders.
	Price decimal.Decimal
}

type Order struct {
	OrderID       uuid.UUID
	UserID        uuid.UUID
	TotalPrice    decimal.Decimal
	Discount      decimal.Decimal
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItem
}

func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Order) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	return dec.Decode(o)
}

func init() {
	gob.Register(Order{})
	gob.Register(OrderItem{})
}

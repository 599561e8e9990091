package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/internal/service"

	"github.com/shopspring/decimal"
)

type AddToCartRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

type AddToCartResponse struct {
	Message string           `json:"message"`
	Cart    map[string]int64 `json:"cart"`
}

// CartItem is a cart line as rendered by the view endpoint
type CartItem struct {
	ItemID   string          `json:"item_id"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type ViewCartResponse struct {
	Cart       []CartItem      `json:"cart"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CheckoutRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country" validate:"required"`

	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cash"`
	CardNumber    string `json:"card_number,omitempty" validate:"required_if=PaymentMethod card,omitempty,credit_card"`
	ExpiryDate    string `json:"expiry_date,omitempty" validate:"required_if=PaymentMethod card"`
	CVV           string `json:"cvv,omitempty" validate:"required_if=PaymentMethod card,omitempty,numeric,min=3,max=4"`

	PromoCode string `json:"promo_code,omitempty"`
}

type CheckoutResponse struct {
	OrderID       string          `json:"order_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
}

type OrderItem struct {
	OrderItemID string          `json:"order_item_id"`
	ItemID      string          `json:"item_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
}

// CheckoutRequestToInput converts the validated request. The CVV is
// checked for shape above and then dropped entirely.
func CheckoutRequestToInput(req CheckoutRequest) (service.CheckoutInput, error) {
	in := service.CheckoutInput{
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Country:       req.Country,
		PaymentMethod: req.PaymentMethod,
		PromoCode:     req.PromoCode,
	}

	if req.PaymentMethod == service.PaymentMethodCard {
		month, year, err := parseExpiry(req.ExpiryDate)
		if err != nil {
			return service.CheckoutInput{}, err
		}
		in.CardNumber = req.CardNumber
		in.ExpMonth = month
		in.ExpYear = year
	}
	return in, nil
}

// parseExpiry accepts MM/YY card expiry dates.
func parseExpiry(s string) (month, year int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid expiry date %q", s)
	}

	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid expiry month %q", parts[0])
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil || year < 0 || year > 99 {
		return 0, 0, fmt.Errorf("invalid expiry year %q", parts[1])
	}
	return month, 2000 + year, nil
}

func CartItemEntityToJSON(it entities.CartItem) CartItem {
	return CartItem{
		ItemID:   it.ItemID,
		Quantity: it.Quantity,
		Price:    it.Price,
	}
}

func OrderItemEntityToJSON(it entities.OrderItem) OrderItem {
	return OrderItem{
		OrderItemID: it.OrderItemID.String(),
		ItemID:      it.ItemID.String(),
		Quantity:    it.Quantity,
		Price:       it.Price,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	order := Order{
		OrderID:       o.OrderID.String(),
		UserID:        o.UserID.String(),
		TotalPrice:    o.TotalPrice,
		Discount:      o.Discount,
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	if len(o.Items) > 0 {
		order.Items = make([]OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			order.Items = append(order.Items, OrderItemEntityToJSON(it))
		}
	}
	return order
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/grubline/order-service/internal/entities"
	"github.com/grubline/order-service/internal/service"
	"github.com/grubline/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartService interface {
	AddItem(ctx context.Context, userID, itemID uuid.UUID, qty int64) (int64, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	ViewCart(ctx context.Context, userID uuid.UUID) ([]entities.CartItem, decimal.Decimal, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, in service.CheckoutInput) (entities.Order, error)
}

type OrderService interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error)
	CompletePayment(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	cart     CartService
	checkout CheckoutService
	orders   OrderService
}

func NewHTTPHandler(logger *slog.Logger, cart CartService, checkout CheckoutService, orders OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		cart:     cart,
		checkout: checkout,
		orders:   orders,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/add-to-cart", h.AddToCart)
	r.Delete("/remove-from-cart/{user_id}/{item_id}", h.RemoveFromCart)
	r.Get("/view-cart/{user_id}", h.ViewCart)
	r.Post("/checkout/{user_id}", h.Checkout)

	r.Get("/orders/{order_id}", h.GetOrder)
	r.Get("/orders/history/{user_id}", h.OrderHistory)
	r.Post("/orders/{order_id}/payment", h.CompletePayment)
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddToCartRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	userID := uuid.MustParse(req.UserID)
	itemID := uuid.MustParse(req.ItemID)

	qty, err := h.cart.AddItem(ctx, userID, itemID, req.Quantity)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add item to cart", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cartMutations.WithLabelValues("add").Inc()
	utils.WriteJSON(w, AddToCartResponse{
		Message: "Item added to cart successfully.",
		Cart:    map[string]int64{req.ItemID: qty},
	}, http.StatusOK)
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.uuidParam(w, r, "user_id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(w, r, "item_id")
	if !ok {
		return
	}

	err := h.cart.RemoveItem(ctx, userID, itemID)
	if errors.Is(err, entities.ErrCartItemNotFound) {
		utils.WriteError(w, "item not found in the cart", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to remove item from cart", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cartMutations.WithLabelValues("remove").Inc()
	utils.WriteMessage(w, "Item removed from cart successfully.", http.StatusOK)
}

func (h *HTTPHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.uuidParam(w, r, "user_id")
	if !ok {
		return
	}

	items, total, err := h.cart.ViewCart(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to view cart", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// an empty cart is a normal answer, not an error
	if len(items) == 0 {
		utils.WriteMessage(w, "Cart is empty.", http.StatusOK)
		return
	}

	resp := ViewCartResponse{
		Cart:       make([]CartItem, 0, len(items)),
		TotalPrice: total,
	}
	for _, it := range items {
		resp.Cart = append(resp.Cart, CartItemEntityToJSON(it))
	}
	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.uuidParam(w, r, "user_id")
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	in, err := CheckoutRequestToInput(req)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.checkout.Checkout(ctx, userID, in)
	switch {
	case errors.Is(err, entities.ErrEmptyCart):
		checkoutsFailed.WithLabelValues("empty_cart").Inc()
		utils.WriteError(w, "cart is empty", http.StatusBadRequest)
		return
	case errors.Is(err, entities.ErrUserNotFound):
		checkoutsFailed.WithLabelValues("unknown_user").Inc()
		utils.WriteError(w, "user not found", http.StatusBadRequest)
		return
	case errors.Is(err, entities.ErrMenuItemNotFound):
		checkoutsFailed.WithLabelValues("unknown_item").Inc()
		utils.WriteError(w, "cart contains an unknown menu item", http.StatusBadRequest)
		return
	case err != nil:
		checkoutsFailed.WithLabelValues("ledger").Inc()
		h.logger.ErrorContext(ctx, "checkout failed",
			slog.String("user_id", userID.String()), slog.Any("error", err))
		utils.WriteError(w, "failed to place order", http.StatusInternalServerError)
		return
	}

	checkoutsPlaced.Inc()
	utils.WriteJSON(w, CheckoutResponse{
		OrderID:       order.OrderID.String(),
		TotalPrice:    order.TotalPrice,
		Discount:      order.Discount,
		PaymentStatus: string(order.PaymentStatus),
		OrderStatus:   string(order.OrderStatus),
	}, http.StatusCreated)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := h.uuidParam(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *HTTPHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.uuidParam(w, r, "user_id")
	if !ok {
		return
	}

	orders, err := h.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list orders", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := OrderHistoryResponse{Orders: make([]Order, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, OrderEntityToJSON(o))
	}
	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *HTTPHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := h.uuidParam(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.orders.CompletePayment(ctx, orderID)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to complete payment", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *HTTPHandler) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if err := h.validate.Var(raw, "required,uuid"); err != nil {
		utils.WriteValidationError(w, err)
		return uuid.UUID{}, false
	}
	return uuid.MustParse(raw), true
}

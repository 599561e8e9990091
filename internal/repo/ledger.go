package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grubline/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// The Save* methods below are meant to run inside a single transaction
// started by trm.Manager; each one picks the context tx up through the
// exec helpers. An order and its items either all land or none do.

func (r *postgresRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns("order_id", "user_id", "total_price", "discount",
			"payment_status", "order_status", "created_at", "updated_at").
		Values(o.OrderID, o.UserID, o.TotalPrice, o.Discount,
			string(o.PaymentStatus), string(o.OrderStatus), o.CreatedAt, o.UpdatedAt).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *postgresRepo) SaveOrderItems(ctx context.Context, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_item_id", "order_id", "item_id", "quantity", "price")

	for _, it := range items {
		q = q.Values(it.OrderItemID, it.OrderID, it.ItemID, it.Quantity, it.Price)
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) SaveAddress(ctx context.Context, a entities.Address) error {
	query, args := r.qb.Insert("addresses").
		Columns("address_id", "user_id", "street", "city", "state",
			"zip_code", "country", "is_default").
		Values(a.AddressID, a.UserID, a.Street, a.City, a.State,
			a.ZipCode, a.Country, a.IsDefault).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}
	return nil
}

func (r *postgresRepo) SavePayment(ctx context.Context, p entities.Payment) error {
	query, args := r.qb.Insert("payments").
		Columns("payment_id", "user_id", "card_last4", "card_type",
			"exp_month", "exp_year", "is_default").
		Values(p.PaymentID, p.UserID, nullString(p.CardLast4), string(p.CardType),
			nullInt32(p.ExpMonth), nullInt32(p.ExpYear), p.IsDefault).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	query, args := r.qb.Select("order_id", "user_id", "total_price", "discount",
		"payment_status", "order_status", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_item_id", "order_id", "item_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var items []OrderItem
	err = r.selectContext(ctx, &items, query, args...)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

func (r *postgresRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error) {
	query, args := r.qb.Select("order_id", "user_id", "total_price", "discount",
		"payment_status", "order_status", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	err := r.selectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, nil))
	}
	return result, nil
}

func (r *postgresRepo) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status entities.PaymentStatus) error {
	query, args := r.qb.Update("orders").
		Set("payment_status", string(status)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

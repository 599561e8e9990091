package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grubline/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price returns the current catalog unit price of a menu item.
// Checkout calls this at order time so the stored OrderItem price is a
// snapshot, not whatever the cart saw earlier.
func (r *postgresRepo) Price(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	query, args := r.qb.Select("price").
		From("menu_items").
		Where(sq.Eq{"item_id": itemID}).
		MustSql()

	var price decimal.Decimal
	err := r.getContext(ctx, &price, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, entities.ErrMenuItemNotFound
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get item price: %w", err)
	}
	return price, nil
}

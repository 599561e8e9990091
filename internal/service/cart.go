package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/grubline/order-service/internal/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStore interface {
	AddItem(ctx context.Context, userID, itemID string, qty int64) (int64, error)
	RemoveItem(ctx context.Context, userID, itemID string) (bool, error)
	ViewCart(ctx context.Context, userID string) (map[string]int64, error)
	ClearCart(ctx context.Context, userID string) error
}

type Pricer interface {
	Price(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

type cartService struct {
	logger *slog.Logger
	store  CartStore
	pricer Pricer
}

func NewCartService(logger *slog.Logger, store CartStore, pricer Pricer) *cartService {
	return &cartService{
		logger: logger.With(slog.String("service", "cart")),
		store:  store,
		pricer: pricer,
	}
}

func (s *cartService) AddItem(ctx context.Context, userID, itemID uuid.UUID, qty int64) (int64, error) {
	total, err := s.store.AddItem(ctx, userID.String(), itemID.String(), qty)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("item added to cart",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int64("quantity", total),
	)
	return total, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	removed, err := s.store.RemoveItem(ctx, userID.String(), itemID.String())
	if err != nil {
		return err
	}
	if !removed {
		return entities.ErrCartItemNotFound
	}
	return nil
}

// ViewCart returns the cart entries together with the current display
// total. Prices here are informational only; checkout re-resolves them.
func (s *cartService) ViewCart(ctx context.Context, userID uuid.UUID) ([]entities.CartItem, decimal.Decimal, error) {
	snapshot, err := s.store.ViewCart(ctx, userID.String())
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]entities.CartItem, 0, len(snapshot))
	total := decimal.Zero

	for itemID, qty := range snapshot {
		price, err := s.resolveDisplayPrice(ctx, itemID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, entities.CartItem{ItemID: itemID, Quantity: qty, Price: price})
		total = total.Add(price.Mul(decimal.NewFromInt(qty)))
	}

	// hash fields come back in arbitrary order
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })

	return items, total, nil
}

func (s *cartService) resolveDisplayPrice(ctx context.Context, itemID string) (decimal.Decimal, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt cart entry %q: %w", itemID, err)
	}

	price, err := s.pricer.Price(ctx, id)
	if errors.Is(err, entities.ErrMenuItemNotFound) {
		// item vanished from the catalog since it was added; show it
		// at zero rather than hiding the whole cart
		s.logger.Warn("cart item missing from catalog", slog.String("item_id", itemID))
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

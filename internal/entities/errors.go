package entities

import "errors"

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrOrderNotFound    = errors.New("order not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrLedgerWrite wraps any failure of the durable order write. The
	// transaction is fully rolled back before it is returned, so the
	// cart stays intact and checkout can be retried.
	ErrLedgerWrite = errors.New("failed to place order")
)

package entities

import "github.com/shopspring/decimal"

// CartItem is a single line of a user's ephemeral cart, enriched with
// the current catalog price when rendered through the view endpoint.
type CartItem struct {
	ItemID   string
	Quantity int64
	Price    decimal.Decimal
}

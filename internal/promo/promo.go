package promo

import "github.com/shopspring/decimal"

type ruleKind int

const (
	percentOff ruleKind = iota
	amountOff
)

type rule struct {
	kind  ruleKind
	value decimal.Decimal
}

// StaticEvaluator resolves promo codes against a fixed rule table.
// Unknown or empty codes are worth nothing, never an error.
type StaticEvaluator struct {
	rules map[string]rule
}

func NewStaticEvaluator() *StaticEvaluator {
	return &StaticEvaluator{
		rules: map[string]rule{
			"DISCOUNT10": {kind: percentOff, value: decimal.NewFromInt(10)},
			"DISCOUNT20": {kind: percentOff, value: decimal.NewFromInt(20)},
			"FLAT5":      {kind: amountOff, value: decimal.NewFromInt(5)},
		},
	}
}

var hundred = decimal.NewFromInt(100)

// Evaluate returns the discount for code on the given subtotal, capped
// at the subtotal itself.
func (e *StaticEvaluator) Evaluate(code string, subtotal decimal.Decimal) decimal.Decimal {
	r, ok := e.rules[code]
	if !ok {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch r.kind {
	case percentOff:
		discount = subtotal.Mul(r.value).Div(hundred)
	case amountOff:
		discount = r.value
	}

	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

package entities

import (
	"strings"

	"github.com/google/uuid"
)

type CardType string

const (
	CardTypeVisa       CardType = "VISA"
	CardTypeMasterCard CardType = "MasterCard"
	CardTypeAmex       CardType = "AMEX"
	CardTypeOther      CardType = "Other"
)

// Payment records how an order was paid for. The card number itself is
// never persisted, only the last four digits and the detected brand.
// For non-card methods all card fields stay empty.
type Payment struct {
	PaymentID uuid.UUID
	UserID    uuid.UUID
	CardLast4 string
	CardType  CardType
	ExpMonth  int
	ExpYear   int
	IsDefault bool
}

func CardTypeFromNumber(number string) CardType {
	switch {
	case strings.HasPrefix(number, "4"):
		return CardTypeVisa
	case strings.HasPrefix(number, "5"):
		return CardTypeMasterCard
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return CardTypeAmex
	default:
		return CardTypeOther
	}
}

func CardLast4(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}

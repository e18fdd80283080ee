package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is keyed by an opaque session key; it is created on the first add
// and removed when its order is placed.
type Cart struct {
	ID         int64
	SessionKey string
	CreatedAt  time.Time
}

// CartLine is a cart item enriched with the product's name and price.
type CartLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

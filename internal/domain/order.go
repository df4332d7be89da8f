package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int64
	CustomerID int64
	BookingID  *int64
	Status     Status
	Lines      []OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine records the price at the moment the order was placed.
// PriceAtOrder is a snapshot and is never recomputed from the catalog.
type OrderLine struct {
	ID           int64
	OrderID      int64
	MenuItemID   int64
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// Total is the sum of price_at_order * quantity over all lines. It is
// derivable and not stored.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.PriceAtOrder.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

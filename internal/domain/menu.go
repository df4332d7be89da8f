package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuCategory carries the translation for one requested locale; the
// translations themselves live in menu_category_translations.
type MenuCategory struct {
	ID          int64
	Name        string
	Description string
	Items       []MenuItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MenuItem's Available flag is a display hint; it does not block ordering.
type MenuItem struct {
	ID          int64
	CategoryID  int64
	Price       decimal.Decimal
	Available   bool
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

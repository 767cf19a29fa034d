package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Category groups menu items for presentation.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// Item is a catalog entry as shown on the menu.
type Item struct {
	ID                  int64
	Name                string
	Description         string
	Price               decimal.Decimal
	ImageURL            string
	Available           bool
	CategoryID          int64
	CategoryName        string
	CategoryDescription string
}

// Price is the authoritative price and availability of an item at a point in
// time. Orders copy Amount and Name into their lines.
type Price struct {
	MenuItemID int64
	Name       string
	Amount     decimal.Decimal
	Available  bool
}

// Repository defines read operations for the menu catalog.
type Repository interface {
	ListAvailable(ctx context.Context) ([]Item, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Item, error)
	Categories(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
}

// PriceReader resolves current unit prices. GetPrice returns ErrNotFound for
// unknown ids; GetPrices silently omits them. The order transaction exposes
// the same view with the returned rows locked.
type PriceReader interface {
	GetPrice(ctx context.Context, id int64) (*Price, error)
	GetPrices(ctx context.Context, ids []int64) ([]Price, error)
}

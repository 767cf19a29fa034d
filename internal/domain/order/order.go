package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/food-ordering/internal/domain/menu"
)

// Order is an immutable record of a placed order with frozen pricing.
type Order struct {
	ID            int64
	UserID        int64
	Lines         []Line
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Final         decimal.Decimal
	DiscountCode  string
	PaymentMethod string
	CreatedAt     time.Time
}

// Line is one purchased item of an order. UnitPrice and Name are copies taken
// when the order was placed.
type Line struct {
	ID         int64
	MenuItemID int64
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

// CartLine is a client-supplied (menu item, quantity) pair.
type CartLine struct {
	MenuItemID int64
	Quantity   int
}

// Page restricts a history listing. The zero value selects every order.
type Page struct {
	// Limit caps the number of orders returned; zero means no limit.
	Limit int
	// BeforeID returns only orders placed before the order with this id.
	BeforeID int64
}

// Tx is the atomic unit an order is placed in. Everything done through a Tx
// is committed together or not at all.
type Tx interface {
	// PriceReader resolves prices inside the transaction. Rows it returns
	// are held stable until the transaction ends.
	menu.PriceReader
	// Insert writes the order header and all of its lines, filling in the
	// assigned ids and creation time.
	Insert(ctx context.Context, o *Order) error
	// SetUserDiscount records the discount code last used by the user.
	SetUserDiscount(ctx context.Context, userID int64, code string) error
}

// Repository defines persistence operations for orders.
type Repository interface {
	// InTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned unchanged.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// ListByUser returns the user's orders with their lines, most recent first.
	ListByUser(ctx context.Context, userID int64, page Page) ([]Order, error)
}

package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity accepted for a single cart line.
const MaxQuantity = 1000

// MaxAmount is the largest order total the orders table can store
// (NUMERIC(12,2)).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Validation failures. Nothing is persisted when these are returned.
var (
	ErrEmptyCart            = errors.New("items are required")
	ErrMissingPaymentMethod = errors.New("payment_method is required")
	ErrAmountTooLarge       = errors.New("order total exceeds the maximum allowed amount")
)

// InvalidQuantityError indicates a cart line whose quantity is not in
// [1, MaxQuantity].
type InvalidQuantityError struct {
	MenuItemID int64
	Quantity   int
}

func (e *InvalidQuantityError) Error() string {
	if e.Quantity > MaxQuantity {
		return fmt.Sprintf("quantity must not exceed %d for menu item ID %d", MaxQuantity, e.MenuItemID)
	}
	return fmt.Sprintf("quantity must be greater than 0 for menu item ID %d", e.MenuItemID)
}

// ItemUnavailableError indicates a cart line referencing a menu item that
// does not exist or is not currently available. The whole order is rejected.
type ItemUnavailableError struct {
	MenuItemID int64
	Missing    bool
}

func (e *ItemUnavailableError) Error() string {
	if e.Missing {
		return fmt.Sprintf("menu item %d not found", e.MenuItemID)
	}
	return fmt.Sprintf("menu item %d is not available", e.MenuItemID)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var iq *InvalidQuantityError
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingPaymentMethod) ||
		errors.Is(err, ErrAmountTooLarge) ||
		errors.As(err, &iq)
}

// IsReference reports whether err is caused by an unknown or unavailable
// menu item.
func IsReference(err error) bool {
	var iu *ItemUnavailableError
	return errors.As(err, &iu)
}

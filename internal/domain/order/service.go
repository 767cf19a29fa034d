package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/food-ordering/internal/domain/discount"
	"github.com/xenking/food-ordering/internal/domain/menu"
	"github.com/xenking/food-ordering/internal/domain/pricing"
)

// PlaceOrderRequest holds the input for placing an order. The user id is
// already authenticated and the discount already resolved.
type PlaceOrderRequest struct {
	UserID        int64
	Lines         []CartLine
	PaymentMethod string
	Discount      discount.Policy
}

// Service encapsulates order placement and order history.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// PlaceOrder validates the cart, resolves prices inside the write
// transaction, prices the order and persists the header and every line as
// one unit. On any error nothing is persisted.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if err := validate(req.Lines, paymentMethod); err != nil {
		return nil, err
	}

	var placed *Order
	err := s.orders.InTx(ctx, func(ctx context.Context, tx Tx) error {
		prices, err := tx.GetPrices(ctx, distinctIDs(req.Lines))
		if err != nil {
			return errors.Wrap(err, "resolve prices")
		}

		o, err := build(req, paymentMethod, prices)
		if err != nil {
			return err
		}

		if err := tx.Insert(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}
		if !req.Discount.IsNone() {
			if err := tx.SetUserDiscount(ctx, req.UserID, req.Discount.CodeOrNone()); err != nil {
				return errors.Wrap(err, "record user discount")
			}
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return placed, nil
}

// ListOrders returns the user's orders, most recent first. A user without
// orders gets an empty, non-nil slice.
func (s *Service) ListOrders(ctx context.Context, userID int64, page Page) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func validate(lines []CartLine, paymentMethod string) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if paymentMethod == "" {
		return ErrMissingPaymentMethod
	}
	for _, l := range lines {
		if l.Quantity <= 0 || l.Quantity > MaxQuantity {
			return &InvalidQuantityError{MenuItemID: l.MenuItemID, Quantity: l.Quantity}
		}
	}
	return nil
}

// build checks every line against the resolved prices and prices the order.
// Lines keep the order the client sent them in.
func build(req PlaceOrderRequest, paymentMethod string, prices []menu.Price) (*Order, error) {
	byID := make(map[int64]menu.Price, len(prices))
	for _, p := range prices {
		byID[p.MenuItemID] = p
	}

	priced := make([]pricing.Line, len(req.Lines))
	lines := make([]Line, len(req.Lines))
	for i, cl := range req.Lines {
		p, ok := byID[cl.MenuItemID]
		if !ok {
			return nil, &ItemUnavailableError{MenuItemID: cl.MenuItemID, Missing: true}
		}
		if !p.Available {
			return nil, &ItemUnavailableError{MenuItemID: cl.MenuItemID}
		}

		unit := p.Amount.Round(2)
		priced[i] = pricing.Line{MenuItemID: cl.MenuItemID, UnitPrice: unit, Quantity: cl.Quantity}
		lines[i] = Line{MenuItemID: cl.MenuItemID, Name: p.Name, Quantity: cl.Quantity, UnitPrice: unit}
	}

	sum := pricing.Compute(priced, req.Discount)
	if sum.Subtotal.GreaterThan(MaxAmount) {
		return nil, ErrAmountTooLarge
	}

	return &Order{
		UserID:        req.UserID,
		Lines:         lines,
		Subtotal:      sum.Subtotal,
		Discount:      sum.Discount,
		Final:         sum.Final,
		DiscountCode:  req.Discount.CodeOrNone(),
		PaymentMethod: paymentMethod,
	}, nil
}

func distinctIDs(lines []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}
	return ids
}

package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/domain/order"
)

const maxPageLimit = 100

// PlaceOrder handles POST /api/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	var (
		lines         []order.CartLine
		paymentMethod string
		discountCode  string
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "items":
			lines, err = decodeCartLines(d)
		case "payment_method":
			paymentMethod, err = optStr(d)
		case "discount_type":
			discountCode, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		fail(w, r, err, "Failed to create order")
		return
	}

	o, err := h.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:        userID,
		Lines:         lines,
		PaymentMethod: paymentMethod,
		Discount:      h.discounts.Resolve(discountCode),
	})
	if err != nil {
		fail(w, r, err, "Failed to create order")
		return
	}

	zctx.From(ctx).Info("Order placed",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.Int("lines", len(o.Lines)),
		zap.String("final", o.Final.StringFixed(2)),
		zap.String("discount_code", o.DiscountCode),
	)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("success", func(e *jx.Encoder) { e.Bool(true) })
			e.Field("message", func(e *jx.Encoder) { e.Str("Order created successfully") })
			e.Field("order", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
					encodeAmounts(e, o)
				})
			})
		})
	})
}

// ListOrders handles GET /api/orders with optional limit and before
// (an order id) query parameters.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID, page)
	if err != nil {
		fail(w, r, err, "Failed to fetch orders")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i])
			}
		})
	})
}

func parsePage(w http.ResponseWriter, r *http.Request) (order.Page, bool) {
	var page order.Page
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return page, false
		}
		page.Limit = min(n, maxPageLimit)
	}
	if v := q.Get("before"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "before must be an order id")
			return page, false
		}
		page.BeforeID = id
	}
	return page, true
}

// decodeCartLines decodes the items array. Every line must carry an integer
// menu_item_id; quantities are checked by the order service.
func decodeCartLines(d *jx.Decoder) ([]order.CartLine, error) {
	switch d.Next() {
	case jx.Array:
	case jx.Null:
		return nil, d.Null()
	case jx.Invalid:
		return nil, errBadBody
	default:
		return nil, &fieldError{msg: "items must be an array"}
	}

	var lines []order.CartLine
	err := d.Arr(func(d *jx.Decoder) error {
		idx := len(lines)
		var (
			line  order.CartLine
			hasID bool
		)
		if d.Next() != jx.Object {
			return itemError(idx, " must be an object")
		}
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			switch string(key) {
			case "menu_item_id":
				id, ok := decodeInt(d)
				if !ok {
					return itemError(idx, ".menu_item_id must be an integer")
				}
				line.MenuItemID, hasID = id, true
			case "quantity":
				q, ok := decodeInt(d)
				if !ok || q > math.MaxInt32 || q < math.MinInt32 {
					return itemError(idx, ".quantity must be an integer")
				}
				line.Quantity = int(q)
			default:
				return d.Skip()
			}
			return nil
		}); err != nil {
			return err
		}
		if !hasID {
			return itemError(idx, ".menu_item_id is required")
		}
		lines = append(lines, line)
		return nil
	})
	return lines, err
}

// decodeInt reads a JSON number with no fractional part.
func decodeInt(d *jx.Decoder) (int64, bool) {
	if d.Next() != jx.Number {
		return 0, false
	}
	n, err := d.Num()
	if err != nil || !n.IsInt() {
		return 0, false
	}
	v, err := n.Int64()
	return v, err == nil
}

func itemError(idx int, problem string) error {
	return &fieldError{msg: "items[" + strconv.Itoa(idx) + "]" + problem}
}

func encodeAmounts(e *jx.Encoder, o *order.Order) {
	e.Field("totalAmount", func(e *jx.Encoder) { encodeMoney(e, o.Subtotal) })
	e.Field("discountAmount", func(e *jx.Encoder) { encodeMoney(e, o.Discount) })
	e.Field("finalAmount", func(e *jx.Encoder) { encodeMoney(e, o.Final) })
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("user_id", func(e *jx.Encoder) { e.Int64(o.UserID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(l.ID) })
						e.Field("menu_item_id", func(e *jx.Encoder) { e.Int64(l.MenuItemID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
						e.Field("price", func(e *jx.Encoder) { encodeMoney(e, l.UnitPrice) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
					})
				}
			})
		})
		encodeAmounts(e, o)
		e.Field("discount_code", func(e *jx.Encoder) { e.Str(o.DiscountCode) })
		e.Field("payment_method", func(e *jx.Encoder) { e.Str(o.PaymentMethod) })
		e.Field("created_at", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
	})
}

//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
)

func TestPlaceOrder_NoAuth(t *testing.T) {
	resp := doPost(t, "/api/orders", orderRequest{
		Items:         []orderLineRequest{{MenuItemID: 1, Quantity: 1}},
		PaymentMethod: "card",
	})
	defer resp.Body.Close()

	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestPlaceOrder_Validation(t *testing.T) {
	s := registerCustomer(t)
	burger := menuItemID(t, "Classic Burger")
	pie := menuItemID(t, "Seasonal Pie")

	tests := []struct {
		name    string
		req     orderRequest
		wantErr string
	}{
		{
			name:    "empty cart",
			req:     orderRequest{Items: []orderLineRequest{}, PaymentMethod: "card"},
			wantErr: "items are required",
		},
		{
			name:    "missing payment method",
			req:     orderRequest{Items: []orderLineRequest{{MenuItemID: burger, Quantity: 1}}},
			wantErr: "payment_method is required",
		},
		{
			name:    "zero quantity",
			req:     orderRequest{Items: []orderLineRequest{{MenuItemID: burger, Quantity: 0}}, PaymentMethod: "card"},
			wantErr: fmt.Sprintf("quantity must be greater than 0 for menu item ID %d", burger),
		},
		{
			name:    "unknown item",
			req:     orderRequest{Items: []orderLineRequest{{MenuItemID: 999999, Quantity: 1}}, PaymentMethod: "card"},
			wantErr: "Menu item ID 999999 not found",
		},
		{
			name:    "unavailable item",
			req:     orderRequest{Items: []orderLineRequest{{MenuItemID: pie, Quantity: 1}}, PaymentMethod: "card"},
			wantErr: fmt.Sprintf("Menu item ID %d is not available", pie),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, "/api/orders", s.Token, tt.req)
			defer resp.Body.Close()

			expectStatus(t, resp, http.StatusBadRequest)
			if e := decodeJSON[errorResponse](t, resp); e.Error != tt.wantErr {
				t.Errorf("error: got %q, want %q", e.Error, tt.wantErr)
			}
		})
	}

	// Rejected orders leave no trace in the history.
	resp := do(t, http.MethodGet, "/api/orders", s.Token, nil)
	defer resp.Body.Close()
	if orders := decodeJSON[[]orderResponse](t, resp); len(orders) != 0 {
		t.Fatalf("expected no orders after rejected placements, got %d", len(orders))
	}
}

func TestPlaceOrder_Pricing(t *testing.T) {
	burger := menuItemID(t, "Classic Burger")
	fries := menuItemID(t, "French Fries")
	cart := []orderLineRequest{{MenuItemID: burger, Quantity: 2}, {MenuItemID: fries, Quantity: 1}}

	tests := []struct {
		discount             string
		total, off, final    float64
		wantUserDiscountType string
	}{
		{discount: "", total: 235, off: 0, final: 235, wantUserDiscountType: "none"},
		{discount: "save20", total: 235, off: 47, final: 188, wantUserDiscountType: "save20"},
		{discount: "loyalty", total: 235, off: 50, final: 185, wantUserDiscountType: "loyalty"},
		{discount: "bogus", total: 235, off: 0, final: 235, wantUserDiscountType: "none"},
	}

	for _, tt := range tests {
		t.Run("discount="+tt.discount, func(t *testing.T) {
			s := registerCustomer(t)

			resp := do(t, http.MethodPost, "/api/orders", s.Token, orderRequest{
				Items:         cart,
				PaymentMethod: "card",
				DiscountType:  tt.discount,
			})
			defer resp.Body.Close()
			expectStatus(t, resp, http.StatusCreated)

			placed := decodeJSON[placedOrderResponse](t, resp)
			if !placed.Success || placed.Order.ID == 0 {
				t.Fatalf("unexpected response: %+v", placed)
			}
			if placed.Order.TotalAmount != tt.total ||
				placed.Order.DiscountAmount != tt.off ||
				placed.Order.FinalAmount != tt.final {
				t.Errorf("amounts: got %v/%v/%v, want %v/%v/%v",
					placed.Order.TotalAmount, placed.Order.DiscountAmount, placed.Order.FinalAmount,
					tt.total, tt.off, tt.final)
			}

			info := do(t, http.MethodGet, "/api/users/discount-info", s.Token, nil)
			defer info.Body.Close()
			if u := decodeJSON[userResponse](t, info); u.DiscountType != tt.wantUserDiscountType {
				t.Errorf("user discount_type: got %q, want %q", u.DiscountType, tt.wantUserDiscountType)
			}
		})
	}
}

func TestListOrders(t *testing.T) {
	s := registerCustomer(t)
	burger := menuItemID(t, "Classic Burger")
	cola := menuItemID(t, "Cola")

	resp := do(t, http.MethodGet, "/api/orders", s.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if orders := decodeJSON[[]orderResponse](t, resp); len(orders) != 0 {
		t.Fatalf("new customer should have no orders, got %d", len(orders))
	}
	resp.Body.Close()

	var placed []int64
	for _, line := range []orderLineRequest{{MenuItemID: burger, Quantity: 1}, {MenuItemID: cola, Quantity: 3}} {
		resp := do(t, http.MethodPost, "/api/orders", s.Token, orderRequest{
			Items:         []orderLineRequest{line},
			PaymentMethod: "cash",
		})
		expectStatus(t, resp, http.StatusCreated)
		placed = append(placed, decodeJSON[placedOrderResponse](t, resp).Order.ID)
		resp.Body.Close()
	}

	resp = do(t, http.MethodGet, "/api/orders", s.Token, nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != placed[1] || orders[1].ID != placed[0] {
		t.Errorf("expected most recent first: got %d,%d placed %d,%d",
			orders[0].ID, orders[1].ID, placed[0], placed[1])
	}

	latest := orders[0]
	if len(latest.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(latest.Items))
	}
	line := latest.Items[0]
	if line.Name != "Cola" || line.Quantity != 3 || line.Price != 20 {
		t.Errorf("unexpected line: %+v", line)
	}
	if latest.TotalAmount != 60 || latest.FinalAmount != 60 || latest.PaymentMethod != "cash" {
		t.Errorf("unexpected order: %+v", latest)
	}

	// Paging: one order before the latest.
	resp2 := do(t, http.MethodGet, fmt.Sprintf("/api/orders?limit=1&before=%d", latest.ID), s.Token, nil)
	defer resp2.Body.Close()
	expectStatus(t, resp2, http.StatusOK)

	page := decodeJSON[[]orderResponse](t, resp2)
	if len(page) != 1 || page[0].ID != placed[0] {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestListOrders_OnlyOwn(t *testing.T) {
	alice := registerCustomer(t)
	bob := registerCustomer(t)
	burger := menuItemID(t, "Classic Burger")

	resp := do(t, http.MethodPost, "/api/orders", alice.Token, orderRequest{
		Items:         []orderLineRequest{{MenuItemID: burger, Quantity: 1}},
		PaymentMethod: "card",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = do(t, http.MethodGet, "/api/orders", bob.Token, nil)
	defer resp.Body.Close()
	if orders := decodeJSON[[]orderResponse](t, resp); len(orders) != 0 {
		t.Fatalf("bob sees %d orders of alice", len(orders))
	}
}

func TestPlaceOrder_Concurrent(t *testing.T) {
	s := registerCustomer(t)
	fries := menuItemID(t, "French Fries")

	const n = 10
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := do(t, http.MethodPost, "/api/orders", s.Token, orderRequest{
				Items:         []orderLineRequest{{MenuItemID: fries, Quantity: i + 1}},
				PaymentMethod: "card",
			})
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusCreated {
			t.Errorf("order %d: got status %d", i, code)
		}
	}

	resp := do(t, http.MethodGet, "/api/orders", s.Token, nil)
	defer resp.Body.Close()

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != n {
		t.Fatalf("expected %d orders, got %d", n, len(orders))
	}
	seen := make(map[int64]bool, n)
	for _, o := range orders {
		if seen[o.ID] {
			t.Errorf("duplicate order id %d", o.ID)
		}
		seen[o.ID] = true
		if len(o.Items) != 1 {
			t.Errorf("order %d has %d lines", o.ID, len(o.Items))
		}
	}
}

//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRegister_Login(t *testing.T) {
	email := fmt.Sprintf("Login-%d@Example.com", time.Now().UnixNano())

	resp := doPost(t, "/api/auth/register", map[string]string{
		"email":     email,
		"password":  "correct-horse",
		"full_name": "Login Tester",
	})
	expectStatus(t, resp, http.StatusCreated)
	reg := decodeJSON[sessionResponse](t, resp)
	resp.Body.Close()

	if reg.User.DiscountType != "none" {
		t.Errorf("new user discount_type: got %q, want none", reg.User.DiscountType)
	}

	resp = doPost(t, "/api/auth/register", map[string]string{
		"email":     email,
		"password":  "correct-horse",
		"full_name": "Login Tester",
	})
	expectStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = doPost(t, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	login := decodeJSON[sessionResponse](t, resp)
	if login.User.ID != reg.User.ID {
		t.Errorf("login user id: got %d, want %d", login.User.ID, reg.User.ID)
	}
	if login.Token == "" {
		t.Error("login returned no token")
	}
}

func TestLogin_Invalid(t *testing.T) {
	s := registerCustomer(t)

	for name, body := range map[string]map[string]string{
		"wrong password": {"email": s.User.Email, "password": "nope-nope"},
		"unknown email":  {"email": "nobody@example.com", "password": "whatever"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := doPost(t, "/api/auth/login", body)
			defer resp.Body.Close()

			expectStatus(t, resp, http.StatusBadRequest)
			if e := decodeJSON[errorResponse](t, resp); e.Error != "Invalid credentials" {
				t.Errorf("error: got %q", e.Error)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	s := registerCustomer(t)

	resp := do(t, http.MethodGet, "/api/users/me", s.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	me := decodeJSON[userResponse](t, resp)
	resp.Body.Close()
	if me.ID != s.User.ID || me.FullName != "Integration Customer" {
		t.Errorf("unexpected profile: %+v", me)
	}

	resp = do(t, http.MethodPut, "/api/users/profile", s.Token, map[string]string{
		"full_name":     "Renamed Customer",
		"phone":         "+15550199",
		"discount_type": "SAVE20",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = do(t, http.MethodGet, "/api/users/discount-info", s.Token, nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	info := decodeJSON[userResponse](t, resp)
	if info.DiscountType != "save20" {
		t.Errorf("discount_type: got %q, want save20", info.DiscountType)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	for _, path := range []string{"/api/users/me", "/api/users/discount-info", "/api/orders"} {
		t.Run(path, func(t *testing.T) {
			resp := do(t, http.MethodGet, path, "", nil)
			defer resp.Body.Close()
			expectStatus(t, resp, http.StatusUnauthorized)

			resp2 := do(t, http.MethodGet, path, "not-a-token", nil)
			defer resp2.Body.Close()
			expectStatus(t, resp2, http.StatusUnauthorized)
		})
	}
}

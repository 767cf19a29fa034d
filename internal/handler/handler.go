// Package handler implements the HTTP API: menu browsing, accounts, profile
// and order placement and history.
package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/domain/discount"
	"github.com/xenking/food-ordering/internal/domain/menu"
	"github.com/xenking/food-ordering/internal/domain/order"
	"github.com/xenking/food-ordering/internal/domain/user"
)

// Handler holds the dependencies of every API endpoint.
type Handler struct {
	menu      menu.Repository
	orders    *order.Service
	accounts  *auth.Service
	users     user.Repository
	discounts discount.Table
	validate  *validator.Validate
}

// Deps lists the collaborators NewHandler needs.
type Deps struct {
	Menu      menu.Repository
	Orders    *order.Service
	Accounts  *auth.Service
	Users     user.Repository
	Discounts discount.Table
}

// NewHandler constructs a Handler. A nil discount table falls back to
// discount.DefaultTable.
func NewHandler(deps Deps) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	discounts := deps.Discounts
	if discounts == nil {
		discounts = discount.DefaultTable
	}

	return &Handler{
		menu:      deps.Menu,
		orders:    deps.Orders,
		accounts:  deps.Accounts,
		users:     deps.Users,
		discounts: discounts,
		validate:  v,
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// Tokens verifies bearer credentials on protected routes.
	Tokens *auth.Tokens
	// Middlewares run for every routed request, after route matching has
	// started so they can read the chi route pattern.
	Middlewares []func(http.Handler) http.Handler
	// Mount registers extra routes such as health probes.
	Mount func(r chi.Router)
}

// NewRouter returns the chi router serving the API under /api.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(cfg.Middlewares...)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if cfg.Mount != nil {
		cfg.Mount(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", h.ListMenu)
			r.Get("/categories", h.ListCategories)
			r.Get("/category/{categoryID}", h.ListCategoryItems)
			r.Get("/{id}", h.GetMenuItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(cfg.Tokens, unauthorized))

			r.Get("/users/me", h.Me)
			r.Put("/users/profile", h.UpdateProfile)
			r.Get("/users/discount-info", h.DiscountInfo)

			r.Get("/orders", h.ListOrders)
			r.Post("/orders", h.PlaceOrder)
		})
	})

	return r
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/food-ordering/internal/domain/menu"
)

// ListMenu handles GET /api/menu.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAvailable(r.Context())
	if err != nil {
		fail(w, r, err, "Failed to fetch menu items")
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItems(e, items) })
}

// ListCategories handles GET /api/menu/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.menu.Categories(r.Context())
	if err != nil {
		fail(w, r, err, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range cats {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
					e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
					e.Field("description", func(e *jx.Encoder) { e.Str(c.Description) })
				})
			}
		})
	})
}

// ListCategoryItems handles GET /api/menu/category/{categoryID}.
func (h *Handler) ListCategoryItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "Category not found")
	if !ok {
		return
	}
	items, err := h.menu.ListByCategory(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Failed to fetch menu items")
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItems(e, items) })
}

// GetMenuItem handles GET /api/menu/{id}. Unavailable items are returned
// too, flagged by is_available.
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Menu item not found")
	if !ok {
		return
	}
	item, err := h.menu.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Failed to fetch menu item")
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItem(e, *item) })
}

// pathID parses a positive integer URL parameter. Anything else is answered
// with 404 and notFound, as for an unknown id.
func pathID(w http.ResponseWriter, r *http.Request, name, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, notFound)
		return 0, false
	}
	return id, true
}

func encodeItems(e *jx.Encoder, items []menu.Item) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			encodeItem(e, it)
		}
	})
}

func encodeItem(e *jx.Encoder, it menu.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(it.Description) })
		e.Field("price", func(e *jx.Encoder) { encodeMoney(e, it.Price) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(it.ImageURL) })
		e.Field("is_available", func(e *jx.Encoder) { e.Bool(it.Available) })
		e.Field("category_id", func(e *jx.Encoder) {
			if it.CategoryID == 0 {
				e.Null()
				return
			}
			e.Int64(it.CategoryID)
		})
		e.Field("category_name", func(e *jx.Encoder) { e.Str(it.CategoryName) })
		e.Field("category_description", func(e *jx.Encoder) { e.Str(it.CategoryDescription) })
	})
}

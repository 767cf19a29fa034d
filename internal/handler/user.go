package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/domain/user"
)

type profileRequest struct {
	FullName     string `json:"full_name" validate:"required,max=200"`
	Phone        string `json:"phone" validate:"max=32"`
	DiscountType string `json:"discount_type" validate:"max=32"`
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
			e.Field("full_name", func(e *jx.Encoder) { e.Str(u.FullName) })
			e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
			e.Field("phone", func(e *jx.Encoder) { e.Str(u.Phone) })
			e.Field("discount_type", func(e *jx.Encoder) { e.Str(u.DiscountType) })
		})
	})
}

// DiscountInfo handles GET /api/users/discount-info.
func (h *Handler) DiscountInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("discount_type", func(e *jx.Encoder) { e.Str(u.DiscountType) })
		})
	})
}

// UpdateProfile handles PUT /api/users/profile. The discount type is
// normalized through the discount rule table; unknown codes become "none".
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req profileRequest
	err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "full_name":
			req.FullName, err = optStr(d)
		case "phone":
			req.Phone, err = optStr(d)
		case "discount_type":
			req.DiscountType, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil {
		req.FullName = strings.TrimSpace(req.FullName)
		err = h.validate.Struct(req)
	}
	if err != nil {
		fail(w, r, err, "Failed to update profile")
		return
	}

	if _, err := h.users.UpdateProfile(r.Context(), userID, user.Profile{
		FullName:     req.FullName,
		Phone:        strings.TrimSpace(req.Phone),
		DiscountType: h.discounts.Resolve(req.DiscountType).CodeOrNone(),
	}); err != nil {
		fail(w, r, err, "Failed to update profile")
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	userID, _ := auth.UserID(r.Context())
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		fail(w, r, err, "Failed to fetch user info")
		return nil, false
	}
	return u, true
}

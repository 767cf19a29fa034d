package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/domain/user"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "email":
			req.Email, err = optStr(d)
		case "password":
			req.Password, err = optStr(d)
		case "full_name":
			req.FullName, err = optStr(d)
		case "phone":
			req.Phone, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil {
		err = h.validate.Struct(req)
	}
	if err != nil {
		fail(w, r, err, "Internal server error")
		return
	}

	s, err := h.accounts.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		fail(w, r, err, "Internal server error")
		return
	}
	writeSession(w, http.StatusCreated, "User registered successfully", s)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "email":
			req.Email, err = optStr(d)
		case "password":
			req.Password, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && h.validate.Struct(req) != nil {
		err = auth.ErrInvalidCredentials
	}
	if err != nil {
		fail(w, r, err, "Internal server error")
		return
	}

	s, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, err, "Internal server error")
		return
	}
	writeSession(w, http.StatusOK, "Login successful", s)
}

func writeSession(w http.ResponseWriter, status int, msg string, s *auth.Session) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
			e.Field("token", func(e *jx.Encoder) { e.Str(s.Token) })
			e.Field("expires_at", func(e *jx.Encoder) { encodeTime(e, s.ExpiresAt) })
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, s.User) })
		})
	})
}

func encodeUser(e *jx.Encoder, u *user.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("full_name", func(e *jx.Encoder) { e.Str(u.FullName) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(u.Phone) })
		e.Field("user_type", func(e *jx.Encoder) { e.Str(u.UserType) })
		e.Field("discount_type", func(e *jx.Encoder) { e.Str(u.DiscountType) })
	})
}

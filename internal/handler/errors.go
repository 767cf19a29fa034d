package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/domain/menu"
	"github.com/xenking/food-ordering/internal/domain/order"
	"github.com/xenking/food-ordering/internal/domain/user"
)

// fail maps err to a status and error body. Unclassified errors are logged
// and answered with 500 and the opaque message internal.
func fail(w http.ResponseWriter, r *http.Request, err error, internal string) {
	var (
		fe  *fieldError
		ves validator.ValidationErrors
		iu  *order.ItemUnavailableError
	)
	switch {
	case errors.Is(err, errBadBody):
		writeError(w, http.StatusBadRequest, "Invalid request body")
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.msg)
	case errors.As(err, &ves):
		writeError(w, http.StatusBadRequest, validationMessage(ves))
	case errors.As(err, &iu):
		writeError(w, http.StatusBadRequest, unavailableMessage(iu))
	case order.IsValidation(err):
		writeError(w, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, menu.ErrNotFound):
		writeError(w, http.StatusNotFound, "Menu item not found")
	case errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		zctx.From(r.Context()).Error(internal,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, internal)
	}
}

// unauthorized answers requests rejected by the bearer token check.
func unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, "Access token required")
}

// rootMessage returns the message of the domain error at the bottom of err's
// chain so wrapping context never leaks to clients.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// unavailableMessage renders the client-facing text for a rejected menu item.
func unavailableMessage(e *order.ItemUnavailableError) string {
	if e.Missing {
		return "Menu item ID " + strconv.FormatInt(e.MenuItemID, 10) + " not found"
	}
	return "Menu item ID " + strconv.FormatInt(e.MenuItemID, 10) + " is not available"
}

func validationMessage(ves validator.ValidationErrors) string {
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Default values for newly registered users.
const (
	TypeCustomer        = "customer"
	DefaultDiscountType = "none"
)

// User is a registered customer account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	UserType     string
	DiscountType string
	CreatedAt    time.Time
}

// NewUser holds the fields required to create an account.
type NewUser struct {
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
}

// Profile is the user-editable part of an account.
type Profile struct {
	FullName     string
	Phone        string
	DiscountType string
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u NewUser) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, p Profile) (*User, error)
}

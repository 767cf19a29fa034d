package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/food-ordering/internal/domain/user"
)

const (
	userColumns = `id, email, password_hash, full_name, phone, user_type, discount_type, created_at`

	createUserSQL = `INSERT INTO users (email, password_hash, full_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	findUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	updateProfileSQL = `UPDATE users SET full_name = $2, phone = $3, discount_type = $4
		WHERE id = $1
		RETURNING ` + userColumns
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account. A duplicate email yields user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, nu user.NewUser) (*user.User, error) {
	u, err := r.one(ctx, createUserSQL, nu.Email, nu.PasswordHash, nu.FullName, nu.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// FindByEmail looks a user up by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := r.one(ctx, findUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return u, nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := r.one(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// UpdateProfile overwrites the editable profile fields and returns the
// updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, p user.Profile) (*user.User, error) {
	u, err := r.one(ctx, updateProfileSQL, id, p.FullName, p.Phone, p.DiscountType)
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return u, nil
}

// one runs a single-row query and maps pgx.ErrNoRows to user.ErrNotFound.
func (r *UserRepository) one(ctx context.Context, sql string, args ...any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.UserType, &u.DiscountType, &u.CreatedAt,
	)
	return u, err
}

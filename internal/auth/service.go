package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/food-ordering/internal/domain/user"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput holds the fields accepted at sign-up.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Session is the result of a successful registration or login.
type Session struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

// Service handles account registration and login.
type Service struct {
	users  user.Repository
	tokens *Tokens
}

// NewService creates an auth Service.
func NewService(users user.Repository, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account and returns a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	return s.session(u)
}

// Login verifies credentials and returns a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}

	ok, err := CheckPassword(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) session(u *user.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// NormalizeEmail trims and lowercases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

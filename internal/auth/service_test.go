package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/food-ordering/internal/domain/user"
)

// --- Mock implementations ---

type mockUsers struct {
	mu     sync.Mutex
	byID   map[int64]*user.User
	nextID int64
}

func newMockUsers() *mockUsers {
	return &mockUsers{byID: map[int64]*user.User{}}
}

func (m *mockUsers) Create(_ context.Context, nu user.NewUser) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == nu.Email {
			return nil, user.ErrEmailTaken
		}
	}
	m.nextID++
	u := &user.User{
		ID:           m.nextID,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		FullName:     nu.FullName,
		Phone:        nu.Phone,
		UserType:     user.TypeCustomer,
		DiscountType: user.DefaultDiscountType,
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (m *mockUsers) UpdateProfile(_ context.Context, id int64, p user.Profile) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.FullName, u.Phone, u.DiscountType = p.FullName, p.Phone, p.DiscountType
	return u, nil
}

// --- Tests ---

func newTestService(t *testing.T) (*Service, *Tokens) {
	t.Helper()
	tokens := newTestTokens(t, time.Now())
	return NewService(newMockUsers(), tokens), tokens
}

func TestService_RegisterThenLogin(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Email:    "  Jane@Example.com ",
		Password: "s3cret",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", reg.User.Email)
	assert.Equal(t, user.DefaultDiscountType, reg.User.DiscountType)

	id, err := tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)

	login, err := svc.Login(ctx, "JANE@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "x", FullName: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "A@B.C", Password: "y", FullName: "B"})
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestService_LoginInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "right", FullName: "A"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.c", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.c", "right")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequireUser(t *testing.T) {
	tokens := newTestTokens(t, time.Now())
	valid, _, err := tokens.Issue(9)
	require.NoError(t, err)

	deny := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireUser(tokens, deny)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + valid, want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + valid, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, int64(9), seen)
			} else {
				assert.Zero(t, seen)
			}
		})
	}
}

package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tokens, err := NewTokens(TokenConfig{Secret: "test-secret", Issuer: "food-test"})
	require.NoError(t, err)
	tokens.WithNow(func() time.Time { return now })
	return tokens
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	_, err := NewTokens(TokenConfig{Secret: "  "})
	require.Error(t, err)
}

func TestTokens_IssueVerify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, now)

	raw, exp, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokens_Verify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	issuer := newTestTokens(t, now)
	valid, _, err := issuer.Issue(7)
	require.NoError(t, err)

	otherSecret, err := NewTokens(TokenConfig{Secret: "other", Issuer: "food-test"})
	require.NoError(t, err)
	otherSecret.WithNow(func() time.Time { return now })
	forged, _, err := otherSecret.Issue(7)
	require.NoError(t, err)

	otherIssuer, err := NewTokens(TokenConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)
	otherIssuer.WithNow(func() time.Time { return now })
	foreign, _, err := otherIssuer.Issue(7)
	require.NoError(t, err)

	badSubject, err := jwt.NewBuilder().Subject("alice").Issuer("food-test").Expiration(now.Add(time.Hour)).Build()
	require.NoError(t, err)
	badSubjectRaw, err := jwt.Sign(badSubject, jwt.WithKey(jwa.HS256, []byte("test-secret")))
	require.NoError(t, err)

	tests := []struct {
		name  string
		raw   string
		clock time.Time
	}{
		{name: "empty", raw: "", clock: now},
		{name: "garbage", raw: "not-a-token", clock: now},
		{name: "wrong secret", raw: forged, clock: now},
		{name: "wrong issuer", raw: foreign, clock: now},
		{name: "expired", raw: valid, clock: now.Add(25 * time.Hour)},
		{name: "non numeric subject", raw: string(badSubjectRaw), clock: now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestTokens(t, tt.clock)
			_, err := v.Verify(tt.raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	ok, err := CheckPassword("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("hunter3", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("hunter2", "plaintext")
	require.Error(t, err)
}

package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken is returned for any token that fails parsing, signature
// verification or claim validation.
var ErrInvalidToken = errors.New("invalid token")

const (
	defaultTokenTTL = 24 * time.Hour
	defaultIssuer   = "food-ordering"
)

// TokenConfig configures bearer token issuance.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Tokens issues and verifies HS256 bearer tokens whose subject is the
// numeric user id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokens validates cfg and returns a Tokens instance.
func NewTokens(cfg TokenConfig) (*Tokens, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithNow overrides the clock. Used by tests.
func (t *Tokens) WithNow(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// Issue signs a token for userID. It returns the compact serialization and
// the expiry time.
func (t *Tokens) Issue(userID int64) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatInt(userID, 10)).
		Issuer(t.issuer).
		IssuedAt(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return string(signed), expiresAt, nil
}

// Verify checks the signature and claims of raw and returns the user id it
// was issued for.
func (t *Tokens) Verify(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidToken
	}

	tok, err := jwt.ParseString(raw, jwt.WithKey(jwa.HS256, t.secret), jwt.WithValidate(false))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidToken, "parse: %v", err)
	}
	if err := jwt.Validate(tok,
		jwt.WithClock(jwt.ClockFunc(t.now)),
		jwt.WithIssuer(t.issuer),
	); err != nil {
		return 0, errors.Wrapf(ErrInvalidToken, "validate: %v", err)
	}

	id, err := strconv.ParseInt(tok.Subject(), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrap(ErrInvalidToken, "bad subject")
	}
	return id, nil
}

// Package auth issues and verifies the bearer tokens used by the API.
// Tokens are verified only in middleware; business logic receives an
// already-authenticated Principal from the request context.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bazarly/storefront/internal/domain/user"
)

// ErrInvalidToken is returned for missing, malformed, expired, or tampered
// tokens. The cause is not distinguished to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   user.Role
}

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens carrying {userId, role}.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token signer/verifier with the given HMAC secret and
// token lifetime.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given user.
func (t *Tokens) Issue(u *user.User) (string, error) {
	now := t.now()
	c := claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a raw token and returns its principal.
func (t *Tokens) Verify(raw string) (Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(raw, &c,
		func(_ *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	role := user.Role(c.Role)
	if c.UserID == "" || !role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: c.UserID, Role: role}, nil
}

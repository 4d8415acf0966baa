package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/storefront/internal/domain/user"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	u := &user.User{ID: "u1", Role: user.RoleCustomer}
	raw, err := tokens.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	p, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, user.RoleCustomer, p.Role)
}

func TestTokens_WrongSecret(t *testing.T) {
	issuer := NewTokens([]byte("secret-a"), time.Hour)
	verifier := NewTokens([]byte("secret-b"), time.Hour)

	raw, err := issuer.Issue(&user.User{ID: "u1", Role: user.RoleSeller})
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Tampered(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	raw, err := tokens.Issue(&user.User{ID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)

	_, err = tokens.Verify(raw + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Minute)

	raw, err := tokens.Issue(&user.User{ID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_UnknownRole(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	raw, err := tokens.Issue(&user.User{ID: "u1", Role: user.Role("SUPERUSER")})
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	require.NoError(t, CheckPassword(hash, "hunter2"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter3"), ErrBadCredentials)
}

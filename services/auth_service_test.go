package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(AdminCredentials{
		Login:        "emcee",
		PasswordHash: string(hash),
	}, "test-secret")
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthService(t)

	t.Run("issues a parsable token", func(t *testing.T) {
		token, err := auth.Login(ctx, "emcee", "open sesame")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "emcee", claims.Subject)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, "emcee", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects an unknown login", func(t *testing.T) {
		_, err := auth.Login(ctx, "impostor", "open sesame")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthServiceParseToken(t *testing.T) {
	auth := newTestAuthService(t)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auth.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewAuthService(AdminCredentials{Login: "emcee", PasswordHash: "x"}, "other-secret")
		token, err := auth.Login(context.Background(), "emcee", "open sesame")
		require.NoError(t, err)

		_, err = other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

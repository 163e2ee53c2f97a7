package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashish5180/vibe-bites/models"
)

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	u := &models.User{ID: 7, Role: models.RoleAdmin}

	raw, err := tokens.Issue(u)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	u := &models.User{ID: 7, Role: models.RoleUser}

	expired, err := NewTokens("secret", -time.Minute).Issue(u)
	require.NoError(t, err)
	otherKey, err := NewTokens("other", time.Hour).Issue(u)
	require.NoError(t, err)
	noUser, err := tokens.Issue(&models.User{})
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":   expired,
		"other key": otherKey,
		"no user":   noUser,
		"alg none":  unsigned,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", hash)
	assert.True(t, CheckPassword(hash, "Secret1"))
	assert.False(t, CheckPassword(hash, "secret1"))
}

func TestOneTimeToken(t *testing.T) {
	raw, hashed, err := newOneTimeToken()
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, hashToken(raw), hashed)
	assert.NotEqual(t, raw, hashed)
}

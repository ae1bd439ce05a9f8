package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, exp, err := issuer.GenerateToken(42, "shopowner")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.OwnerId)
	assert.Equal(t, "shopowner", claims.Username)
	assert.Equal(t, "shopowner", claims.Subject)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, _, err := issuer.GenerateToken(1, "u")
	require.NoError(t, err)

	_, err = issuer.ParseToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken(1, "u")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := issuer.ParseToken("not.a.token")
	assert.Error(t, err)
}

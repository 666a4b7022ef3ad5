package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/lms-api/pkg/config"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(config.JWTConfig{Secret: "test-secret", Issuer: "lms-test"})

	token, err := issuer.Issue("u1", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "lms-test", claims.Issuer)
}

func TestTokenIssuerDefaultExpiry(t *testing.T) {
	issuer := NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})

	token, err := issuer.Issue("u1", "ada@example.com")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, lifetime)
}

func TestTokenIssuerRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})
	other := NewTokenIssuer(config.JWTConfig{Secret: "different-secret"})

	token, err := other.Issue("u1", "ada@example.com")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenIssuerRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(config.JWTConfig{Secret: "test-secret", Expiration: -time.Hour})
	// Negative expiration falls back to the default, so build a short
	// lived issuer directly.
	short := &TokenIssuer{secret: []byte("test-secret"), expiry: -time.Minute}

	token, err := short.Issue("u1", "ada@example.com")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)

	_, err = short.Verify(token)
	require.Error(t, err)
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})

	_, err := issuer.Verify("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

package jwtinfra

import (
	"errors"
	"strings"
	"testing"

	"github.com/frelsi/frelsi-api/internal/config"
	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiryDays int) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{JWTSecret: "test-secret", JWTExpiryDays: expiryDays})
	require.NoError(t, err)
	return p
}

func TestNewProvider_EmptySecret_Fails(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTSecret: ""})
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, 7)

	token, err := p.Sign("admin@example.com")
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerify_Expired_IsDistinct(t *testing.T) {
	// Negative expiry issues an already-expired token.
	p := newTestProvider(t, -1)

	token, err := p.Sign("admin@example.com")
	require.NoError(t, err)

	verifier := newTestProvider(t, 7)
	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestVerify_TamperedSignature_NotExpired(t *testing.T) {
	p := newTestProvider(t, 7)

	token, err := p.Sign("admin@example.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = p.Verify(tampered)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestVerify_WrongSecret_Fails(t *testing.T) {
	p := newTestProvider(t, 7)
	token, err := p.Sign("admin@example.com")
	require.NoError(t, err)

	other, err := NewProvider(&config.Config{JWTSecret: "other-secret", JWTExpiryDays: 7})
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTokenExpired))
}

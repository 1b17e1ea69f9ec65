package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, expiresAt, err := svc.Issue("studio", "operator")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "studio", claims.Subject)
	assert.Equal(t, "operator", claims.Role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService("secret", time.Hour).Issue("studio", "operator")
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.Issue("studio", "operator")
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Minute).Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

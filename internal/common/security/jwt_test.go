package security

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuer_EmptyKey(t *testing.T) {
	_, err := NewTokenIssuer(nil, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySigningKey)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("john@rguktsklm.ac.in", "student")
	require.NoError(t, err)

	email, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "john@rguktsklm.ac.in", email)

	parsed, err := jwtauth.VerifyToken(issuer.JWTAuth(), token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.Expiration(), time.Minute)

	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	role, err := GetRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "student", role)
}

func TestTokenIssuer_NoExpiry(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("secret"), 0)
	require.NoError(t, err)

	token, err := issuer.Issue("ao@rguktsklm.ac.in", "faculty")
	require.NoError(t, err)

	parsed, err := jwtauth.VerifyToken(issuer.JWTAuth(), token)
	require.NoError(t, err)
	assert.True(t, parsed.Expiration().IsZero())
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	a, err := NewTokenIssuer([]byte("secret-a"), time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer([]byte("secret-b"), time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("john@rguktsklm.ac.in", "student")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)

	claims := map[string]interface{}{ClaimEmail: "john@rguktsklm.ac.in", ClaimRole: "student"}
	jwtauth.SetExpiry(claims, time.Now().Add(-time.Hour))
	_, token, err := issuer.JWTAuth().Encode(claims)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Tampered(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("secret"), time.Hour)
	require.NoError(t, err)

	original, err := issuer.Issue("john@rguktsklm.ac.in", "student")
	require.NoError(t, err)
	other, err := issuer.Issue("mallory@rguktsklm.ac.in", "representative")
	require.NoError(t, err)

	// Payload of one token with the signature of the other.
	a, b := strings.Split(original, "."), strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = issuer.Verify(forged)
	assert.Error(t, err)
}

func TestGetEmailFromClaims(t *testing.T) {
	email, err := GetEmailFromClaims(jwt.MapClaims{ClaimEmail: "a@rguktsklm.ac.in"})
	require.NoError(t, err)
	assert.Equal(t, "a@rguktsklm.ac.in", email)

	_, err = GetEmailFromClaims(jwt.MapClaims{ClaimEmail: 42})
	assert.Error(t, err)

	_, err = GetEmailFromClaims(jwt.MapClaims{})
	assert.Error(t, err)
}

package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimEmail = "email"
	ClaimRole  = "role"
)

var ErrEmptySigningKey = errors.New("jwt signing key must not be empty")

// TokenIssuer signs bearer tokens with a process-wide HMAC key.
// A zero ttl issues tokens without an exp claim.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenIssuer(signingKey []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(signingKey) == 0 {
		return nil, ErrEmptySigningKey
	}
	return &TokenIssuer{
		auth: jwtauth.New("HS256", signingKey, nil),
		ttl:  ttl,
	}, nil
}

// JWTAuth exposes the underlying verifier for jwtauth middleware.
func (t *TokenIssuer) JWTAuth() *jwtauth.JWTAuth {
	return t.auth
}

func (t *TokenIssuer) Issue(email, role string) (string, error) {
	claims := map[string]interface{}{
		ClaimEmail: email,
		ClaimRole:  role,
	}
	jwtauth.SetIssuedNow(claims)
	if t.ttl > 0 {
		jwtauth.SetExpiryIn(claims, t.ttl)
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Verify checks signature and expiry and returns the email claim.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	return GetEmailFromClaims(claims)
}

// Helper functions to extract claims, can be used in middleware or services
func GetEmailFromClaims(claims jwt.MapClaims) (string, error) {
	email, ok := claims[ClaimEmail].(string)
	if !ok || email == "" {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims[ClaimRole].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

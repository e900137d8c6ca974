// Package policy holds the pure registration checks: the institutional email
// domain, the faculty position allow-list, and the password length rules.
package policy

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	DefaultEmailDomain = "@rguktsklm.ac.in"

	// MinPasswordLength counts characters, not bytes.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt hashes without truncation.
	MaxPasswordBytes = 72

	// DefaultPosition is stored for faculty rows written by other paths.
	DefaultPosition = "Faculty"
)

// DefaultAllowedPositions are the faculty mailbox names accepted at registration.
var DefaultAllowedPositions = []string{"ao", "dean", "ada", "dsw"}

var (
	ErrInvalidDomain    = errors.New("invalid email domain")
	ErrMalformedEmail   = errors.New("malformed email address")
	ErrPositionNotFound = errors.New("position not allowed")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
)

type EmailPolicy struct {
	domain    string
	positions map[string]struct{}
}

// NewEmailPolicy builds a policy for the given domain suffix (with or without
// the leading "@"). Empty arguments fall back to the defaults.
func NewEmailPolicy(domain string, positions []string) *EmailPolicy {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	if len(positions) == 0 {
		positions = DefaultAllowedPositions
	}
	allowed := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		allowed[p] = struct{}{}
	}
	return &EmailPolicy{domain: domain, positions: allowed}
}

func (p *EmailPolicy) Domain() string {
	return p.domain
}

// Validate rejects an absent email or one outside the institutional domain.
func (p *EmailPolicy) Validate(email string) error {
	if email == "" || !strings.HasSuffix(email, p.domain) {
		return ErrInvalidDomain
	}
	return nil
}

// Position derives the faculty position from the local part of email.
// The address must contain exactly one "@" and a non-empty local part.
func (p *EmailPolicy) Position(email string) (string, error) {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" || strings.Count(email, "@") != 1 {
		return "", ErrMalformedEmail
	}
	if _, ok := p.positions[local]; !ok {
		return "", ErrPositionNotFound
	}
	return local, nil
}

// IsAllowedPosition reports whether the local part of email is in the allow-list.
// Matching is exact and case-sensitive.
func (p *EmailPolicy) IsAllowedPosition(email string) bool {
	_, err := p.Position(email)
	return err == nil
}

// CheckPassword enforces the length policy shared by registration and rotation.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Package session reads the platform-issued JWT held by a signed-in user.
//
// The signature is not verified here: the platform verifies the token on
// every GraphQL call. This package only extracts identity and expiry so the
// pages can redirect before making a call that is bound to fail.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpired      = errors.New("session expired")
)

// Claims is the subset of the token the dashboard needs.
type Claims struct {
	Subject   string
	UserID    int64
	ExpiresAt time.Time // zero when the token carries no exp
}

// tokenClaims mirrors the platform payload; user claims are nested under
// the Hasura namespace.
type tokenClaims struct {
	jwt.RegisteredClaims
	Hasura map[string]any `json:"https://hasura.io/jwt/claims,omitempty"`
}

// Decode parses token and checks its expiry against now.
func Decode(token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c := Claims{Subject: tc.Subject}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	c.UserID = userID(tc)

	if !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now) {
		return c, ErrExpired
	}
	return c, nil
}

func userID(tc tokenClaims) int64 {
	if raw, ok := tc.Hasura["x-hasura-user-id"]; ok {
		if s, ok := raw.(string); ok {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				return id
			}
		}
	}
	if id, err := strconv.ParseInt(tc.Subject, 10, 64); err == nil {
		return id
	}
	return 0
}

// TTL returns how long until the token expires, or fallback when it
// carries no expiry.
func (c Claims) TTL(now time.Time, fallback time.Duration) time.Duration {
	if c.ExpiresAt.IsZero() {
		return fallback
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

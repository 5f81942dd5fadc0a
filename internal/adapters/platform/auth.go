package platform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Message shown for rejected credentials.
const MsgIncorrectCredentials = "Incorrect username or password."

const platformBadCredentials = "User does not exist or password incorrect"

// CredentialsError carries the message to show on the login form.
type CredentialsError struct {
	Message string
}

func (e *CredentialsError) Error() string { return e.Message }

// Unwrap exposes ErrInvalidCredentials for errors.Is.
func (e *CredentialsError) Unwrap() error { return ErrInvalidCredentials }

// SignIn exchanges a login or e-mail and password for a platform JWT.
func (c *Client) SignIn(ctx context.Context, identifier, password string) (token string, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "signin", start, err) }()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", &CredentialsError{Message: "Username and password are required."}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signinURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("signin: build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(identifier, password))

	raw, err := c.do(req)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
			return "", &CredentialsError{Message: normalizeSigninMessage(se.Message)}
		}
		return "", fmt.Errorf("signin: %w", err)
	}

	token = decodeToken(raw)
	if token == "" {
		return "", fmt.Errorf("signin: %w: empty token", ErrUpstream)
	}
	return token, nil
}

func basicCredentials(identifier, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(identifier + ":" + password))
}

// decodeToken accepts a JSON string body or the raw token text.
func decodeToken(raw []byte) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

func normalizeSigninMessage(msg string) string {
	if msg == "" || strings.Contains(msg, platformBadCredentials) {
		return MsgIncorrectCredentials
	}
	return msg
}

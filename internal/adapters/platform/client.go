// Package platform talks to the learning platform: basic-auth sign-in and
// Bearer-authenticated GraphQL queries.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/skillboard/pkg/logger"
	"github.com/okian/skillboard/pkg/metrics"
)

// Response bodies larger than this are rejected.
const maxBodyBytes = 8 << 20

// Client calls the platform endpoints. It is safe for concurrent use.
type Client struct {
	graphqlURL string
	signinURL  string
	http       *http.Client
	timeout    time.Duration
	userAgent  string
	log        logger.Logger
}

// New creates a Client for the given endpoints.
func New(graphqlURL, signinURL string, opts ...Option) *Client {
	c := &Client{
		graphqlURL: graphqlURL,
		signinURL:  signinURL,
		http:       &http.Client{},
		timeout:    defaultTimeout,
		userAgent:  "skillboard",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("platform")
	}
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Query posts a GraphQL document with the token as Bearer credentials and
// decodes the "data" member into out.
func (c *Client) Query(ctx context.Context, op, token, query string, vars map[string]any, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(ctx, op, start, err) }()

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer(token))

	raw, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var resp graphqlResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", op, ErrUpstream, err)
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("%s: %w", op, classifyGraphQL(resp.Errors))
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%s: %w: decode data: %w", op, ErrUpstream, err)
	}
	return nil
}

// do sends req and returns the body of a 2xx response. Non-2xx responses
// are mapped onto the error taxonomy with the upstream message attached.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, &StatusError{Code: resp.StatusCode, Message: upstreamMessage(raw)}
	}
	return raw, nil
}

func (c *Client) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.RecordUpstreamCall(op, Outcome(err), float64(elapsed.Milliseconds()))
	if err != nil {
		c.log.Warn(ctx, "platform call failed", logger.String("operation", op), logger.Duration("elapsed", elapsed), logger.Error(err))
		return
	}
	c.log.Debug(ctx, "platform call", logger.String("operation", op), logger.Duration("elapsed", elapsed))
}

// StatusError is a non-2xx platform response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", kindForStatus(e.Code), e.Code)
	}
	return fmt.Sprintf("%s (status %d): %s", kindForStatus(e.Code), e.Code, e.Message)
}

// Unwrap exposes the taxonomy kind for errors.Is.
func (e *StatusError) Unwrap() error { return kindForStatus(e.Code) }

func classifyGraphQL(errs []graphqlError) error {
	msgs := make([]string, 0, len(errs))
	kind := ErrGraphQL
	for _, e := range errs {
		msgs = append(msgs, e.Message)
		switch e.Extensions.Code {
		case "invalid-jwt", "access-denied":
			kind = ErrUnauthorized
		}
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(msgs, "; "))
}

// upstreamMessage extracts a readable message from an error body, which the
// platform sends as {"error": "..."}, {"message": "..."}, a JSON string or text.
func upstreamMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Error != "" {
			return obj.Error
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func bearer(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
}

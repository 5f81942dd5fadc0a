// Package api declares the JSON HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/domain/types"
	"github.com/okian/skillboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	SignIn(ctx context.Context, identifier, password string) (service.Session, error)
	Profile(ctx context.Context, token string, req ProfileRequest) (types.Profile, error)
}

// ProfileRequest mirrors the service's chart selection.
type ProfileRequest = service.ProfileRequest

// DefaultSessionCookie is read for credentials when no Authorization header
// is sent.
const DefaultSessionCookie = "skillboard_token"

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler  *HealthHandler
	signinHandler  *SignInHandler
	profileHandler *ProfileHandler
	limiter        *SignInLimiter
	log            logger.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	cookie  string
	limiter *SignInLimiter
	log     logger.Logger
}

// WithSessionCookie sets the cookie consulted by GET /api/profile.
func WithSessionCookie(name string) Option {
	return func(o *serverOptions) {
		if name != "" {
			o.cookie = name
		}
	}
}

// WithSignInLimiter throttles POST /api/signin.
func WithSignInLimiter(l *SignInLimiter) Option {
	return func(o *serverOptions) { o.limiter = l }
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{cookie: DefaultSessionCookie}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		signinHandler:  NewSignInHandler(deps),
		profileHandler: NewProfileHandler(deps, o.cookie),
		limiter:        o.limiter,
		log:            o.log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/signin", RequestLogMiddleware(s.log, MetricsMiddleware(RateLimitMiddleware(s.limiter, s.signinHandler.HandleSignIn), "signin")))
	mux.HandleFunc("/api/profile", RequestLogMiddleware(s.log, MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile")))
}

type signinRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type signinResponse struct {
	Token     string     `json:"token"`
	UserID    int64      `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// bearerToken returns the Authorization Bearer credentials, if any.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// Package site serves the server-rendered dashboard pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/okian/skillboard/internal/adapters/http/api"
	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/domain/session"
	"github.com/okian/skillboard/internal/domain/types"
	"github.com/okian/skillboard/pkg/logger"
)

// Error constants.
var (
	ErrTemplate = errors.New("site template parse failed")
	ErrRender   = errors.New("site render failed")
)

// Cookie names and lifetimes.
const (
	DefaultSessionCookie = "skillboard_token"
	ThemeCookie          = "skillboard_theme"
	themeMaxAge          = 365 * 24 * 60 * 60
	defaultSessionTTL    = 24 * time.Hour
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Dependencies required by the pages.
type Dependencies interface {
	SignIn(ctx context.Context, identifier, password string) (service.Session, error)
	Session(token string) (session.Claims, error)
	Profile(ctx context.Context, token string, req service.ProfileRequest) (types.Profile, error)
}

// Site renders the login, profile and error pages.
type Site struct {
	deps    Dependencies
	tmpl    *template.Template
	cookie  string
	secure  bool
	limiter *api.SignInLimiter
	now     func() time.Time
	log     logger.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithSessionCookie names the cookie holding the platform token.
func WithSessionCookie(name string) Option {
	return func(s *Site) {
		if name != "" {
			s.cookie = name
		}
	}
}

// WithSecureCookies marks cookies Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Site) { s.secure = secure }
}

// WithSignInLimiter throttles login form submissions.
func WithSignInLimiter(l *api.SignInLimiter) Option {
	return func(s *Site) { s.limiter = l }
}

// WithLogger sets the site logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now for cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

var funcs = template.FuncMap{
	"statusClass": func(status string) string { return strings.ReplaceAll(status, " ", "-") },
	"pct":         func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

// New parses the embedded templates.
func New(deps Dependencies, opts ...Option) (*Site, error) {
	tmpl, err := template.New("site").Funcs(funcs).ParseFS(siteFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	s := &Site{deps: deps, tmpl: tmpl, cookie: DefaultSessionCookie, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("site")
	}
	return s, nil
}

// Register attaches the page routes to mux.
func (s *Site) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	page := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		return api.RequestLogMiddleware(s.log, api.MetricsMiddleware(h, endpoint))
	}
	mux.HandleFunc("/", page("root", s.HandleRoot))
	mux.HandleFunc("/login", page("login", s.HandleLogin))
	mux.HandleFunc("/logout", page("logout", s.HandleLogout))
	mux.HandleFunc("/profile", page("profile", s.HandleProfile))
	mux.HandleFunc("/error/", page("error", s.HandleError))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(StaticFS())))
}

// HandleRoot sends signed-in users to their profile and everyone else to
// the login page. Unknown paths get the 404 page.
func (s *Site) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	if _, ok := s.session(r); ok {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// session returns the token from the session cookie when it decodes and
// has not expired.
func (s *Site) session(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := s.deps.Session(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *Site) setSession(w http.ResponseWriter, sess service.Session) {
	ttl := sess.Claims.TTL(s.now(), defaultSessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Site) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// theme applies ?theme= (persisting it) or falls back to the cookie; dark
// is the default.
func (s *Site) theme(w http.ResponseWriter, r *http.Request) string {
	if t := r.URL.Query().Get("theme"); t == ThemeDark || t == ThemeLight {
		http.SetCookie(w, &http.Cookie{
			Name:     ThemeCookie,
			Value:    t,
			Path:     "/",
			MaxAge:   themeMaxAge,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		return t
	}
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// render executes a template into a buffer so a failing template never
// leaves a half-written page.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error(r.Context(), "render failed", logger.String("template", name), logger.Error(fmt.Errorf("%w: %w", ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/skillboard/internal/adapters/http/api"
	"github.com/okian/skillboard/internal/adapters/platform"
	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/domain/types"
	"github.com/okian/skillboard/pkg/logger"
)

// Login form messages.
const (
	MsgUnexpected  = "An unexpected error occurred. Please try again."
	MsgRateLimited = "Too many sign-in attempts. Please wait a moment and try again."
)

const maxFormBytes = 4 << 10

type loginPage struct {
	Title      string
	Theme      string
	Identifier string
	Error      string
}

type profilePage struct {
	Title    string
	Theme    string
	Expanded bool
	Profile  types.Profile
	Charts   []chartView
}

type chartView struct {
	types.SkillChart
	Radar Radar
}

type errorPage struct {
	Title   string
	Theme   string
	Status  int
	Message string
}

// HandleLogin renders the sign-in form and exchanges credentials for a
// session cookie.
func (s *Site) HandleLogin(w http.ResponseWriter, r *http.Request) {
	theme := s.theme(w, r)
	switch r.Method {
	case http.MethodGet:
		if _, ok := s.session(r); ok {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		s.render(w, r, http.StatusOK, "login.html", loginPage{Title: "Sign in", Theme: theme})
	case http.MethodPost:
		s.submitLogin(w, r, theme)
	default:
		w.Header().Set("Allow", "GET, POST")
		s.renderError(w, r, http.StatusMethodNotAllowed)
	}
}

func (s *Site) submitLogin(w http.ResponseWriter, r *http.Request, theme string) {
	if ok, wait := s.limiter.Allow(r); !ok {
		w.Header().Set("Retry-After", api.RetryAfter(wait))
		s.render(w, r, http.StatusTooManyRequests, "login.html", loginPage{Title: "Sign in", Theme: theme, Error: MsgRateLimited})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", loginPage{Title: "Sign in", Theme: theme, Error: MsgUnexpected})
		return
	}
	identifier := strings.TrimSpace(r.PostFormValue("identifier"))
	password := r.PostFormValue("password")

	sess, err := s.deps.SignIn(r.Context(), identifier, password)
	if err != nil {
		page := loginPage{Title: "Sign in", Theme: theme, Identifier: identifier, Error: MsgUnexpected}
		status := http.StatusBadGateway
		var cerr *platform.CredentialsError
		if errors.As(err, &cerr) {
			page.Error = cerr.Message
			status = http.StatusUnauthorized
		} else {
			s.log.Error(r.Context(), "sign-in failed", logger.Error(err))
		}
		s.render(w, r, status, "login.html", page)
		return
	}

	s.setSession(w, sess)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleLogout drops the session cookie.
func (s *Site) HandleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleProfile renders the dashboard for the signed-in user.
func (s *Site) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.renderError(w, r, http.StatusMethodNotAllowed)
		return
	}
	token, ok := s.session(r)
	if !ok {
		s.clearSession(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	theme := s.theme(w, r)

	q := r.URL.Query()
	req := service.ProfileRequest{View: q.Get("view"), Group: q.Get("group")}
	expanded := req.View == service.ViewExpanded

	profile, err := s.deps.Profile(r.Context(), token, req)
	if err != nil {
		s.profileFailed(w, r, err)
		return
	}

	charts := make([]chartView, len(profile.Skills))
	for i, c := range profile.Skills {
		charts[i] = chartView{SkillChart: c, Radar: NewRadar(c.Skills)}
	}
	s.render(w, r, http.StatusOK, "profile.html", profilePage{
		Title:    profile.User.Login,
		Theme:    theme,
		Expanded: expanded,
		Profile:  profile,
		Charts:   charts,
	})
}

// profileFailed maps a profile error to a redirect. An expired or rejected
// session goes back to the login page.
func (s *Site) profileFailed(w http.ResponseWriter, r *http.Request, err error) {
	if service.IsRequestError(err) {
		http.Redirect(w, r, "/error/400", http.StatusSeeOther)
		return
	}
	switch platform.StatusCode(err) {
	case http.StatusUnauthorized:
		s.clearSession(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case http.StatusBadRequest:
		http.Redirect(w, r, "/error/400", http.StatusSeeOther)
	case http.StatusNotFound:
		http.Redirect(w, r, "/error/404", http.StatusSeeOther)
	default:
		s.log.Error(r.Context(), "profile build failed", logger.Error(err))
		http.Redirect(w, r, "/error/500", http.StatusSeeOther)
	}
}

// HandleError renders /error/{400,404,500}. Other codes render as 404.
func (s *Site) HandleError(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/error/") {
	case "400":
		s.renderError(w, r, http.StatusBadRequest)
	case "500":
		s.renderError(w, r, http.StatusInternalServerError)
	default:
		s.renderError(w, r, http.StatusNotFound)
	}
}

var errorMessages = map[int]string{
	http.StatusBadRequest:          "The request could not be understood.",
	http.StatusNotFound:            "The page you are looking for does not exist.",
	http.StatusMethodNotAllowed:    "That method is not allowed here.",
	http.StatusInternalServerError: "Something went wrong on our side. Please try again later.",
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int) {
	msg, ok := errorMessages[status]
	if !ok {
		msg = http.StatusText(status)
	}
	s.render(w, r, status, "error.html", errorPage{
		Title:   http.StatusText(status),
		Theme:   s.theme(w, r),
		Status:  status,
		Message: msg,
	})
}

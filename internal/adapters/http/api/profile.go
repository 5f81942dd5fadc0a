package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/skillboard/internal/adapters/platform"
	service "github.com/okian/skillboard/internal/app"
)

// Upper bound for ?limit.
const maxLimit = 100

// ProfileHandler handles GET /api/profile.
type ProfileHandler struct {
	deps   Dependencies
	cookie string
}

// NewProfileHandler creates a profile handler reading the session from the
// Authorization header or the named cookie.
func NewProfileHandler(deps Dependencies, cookie string) *ProfileHandler {
	return &ProfileHandler{deps: deps, cookie: cookie}
}

// HandleGetProfile returns the derived profile for the caller's token.
// Query: skills=a,b (allow list), group=name, view=overview|expanded, limit=N.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethod))
		return
	}

	token := bearerToken(r)
	if token == "" && h.cookie != "" {
		if c, err := r.Cookie(h.cookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	req, err := parseProfileQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	profile, err := h.deps.Profile(r.Context(), token, req)
	if err != nil {
		switch {
		case service.IsRequestError(err):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		case errors.Is(err, platform.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
		case errors.Is(err, platform.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		default:
			writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func parseProfileQuery(r *http.Request) (ProfileRequest, error) {
	q := r.URL.Query()
	req := ProfileRequest{
		View:  strings.TrimSpace(q.Get("view")),
		Group: strings.TrimSpace(q.Get("group")),
	}
	if raw := q.Get("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Skills = append(req.Skills, s)
			}
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLimit {
			return ProfileRequest{}, errors.New("limit must be an integer between 1 and 100")
		}
		req.Limit = n
	}
	return req, nil
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/skillboard/internal/adapters/platform"
)

const maxSigninBody = 4 << 10

// SignInHandler handles POST /api/signin.
type SignInHandler struct {
	deps Dependencies
}

// NewSignInHandler creates a new sign-in handler.
func NewSignInHandler(deps Dependencies) *SignInHandler {
	return &SignInHandler{deps: deps}
}

// HandleSignIn exchanges {identifier, password} for a platform token.
func (h *SignInHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.signin"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethod))
		return
	}

	var req signinRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSigninBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("identifier and password are required")))
		return
	}

	sess, err := h.deps.SignIn(r.Context(), req.Identifier, req.Password)
	if err != nil {
		var ce *platform.CredentialsError
		switch {
		case errors.As(err, &ce):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", ce)
		case errors.Is(err, platform.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
		default:
			writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
		}
		return
	}

	resp := signinResponse{Token: sess.Token, UserID: sess.Claims.UserID}
	if !sess.Claims.ExpiresAt.IsZero() {
		exp := sess.Claims.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}

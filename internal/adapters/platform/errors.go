package platform

import (
	"errors"
	"net/http"
)

// Sentinel kinds for platform errors; match with errors.Is.
var (
	ErrUnauthorized       = errors.New("platform: unauthorized")
	ErrBadRequest         = errors.New("platform: bad request")
	ErrNotFound           = errors.New("platform: not found")
	ErrUpstream           = errors.New("platform: upstream failure")
	ErrNetwork            = errors.New("platform: network error")
	ErrGraphQL            = errors.New("platform: graphql error")
	ErrInvalidCredentials = errors.New("platform: invalid credentials")
)

// StatusCode maps an error returned by this package to the status a page
// should report. Unknown errors map to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the metrics label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return "unauthorized"
	default:
		return "error"
	}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUpstream
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/grading"
	"github.com/physika-edu/physika-lms/internal/progress"
)

type errBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	CurrentIP string `json:"current_ip,omitempty"`
}

// writeErr maps the progress error taxonomy onto HTTP statuses. Anything
// unrecognized is a persistence/internal failure.
func writeErr(w http.ResponseWriter, err error) {
	body := errBody{Error: err.Error()}
	status := http.StatusInternalServerError
	body.Code = "internal"

	var restricted *progress.RestrictedError
	switch {
	case errors.As(err, &restricted):
		status = http.StatusForbidden
		body.Code = "access_restricted"
		body.CurrentIP = restricted.CurrentIP
	case errors.Is(err, progress.ErrDraftAssignment):
		status = http.StatusConflict
		body.Code = "draft_assignment"
	case errors.Is(err, progress.ErrExhaustedVariations):
		status = http.StatusConflict
		body.Code = "exhausted_variations"
	case errors.Is(err, progress.ErrInvalidInput), errors.Is(err, grading.ErrNotANumber):
		status = http.StatusBadRequest
		body.Code = "invalid_input"
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, progress.ErrNotFound):
		status = http.StatusNotFound
		body.Code = "not_found"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// clientIP trusts chi's RealIP middleware to have rewritten RemoteAddr from
// the forwarded headers; a trailing port is stripped if present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

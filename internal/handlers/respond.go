package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"mathblog/internal/domain"
	"mathblog/internal/newsletter"
	"mathblog/pkg/mailer"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps domain and pipeline sentinels to HTTP statuses. Anything
// unrecognized is a 500 with the detail kept in logs, not the response.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicate):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, newsletter.ErrInvalidEmail):
		status, message = http.StatusBadRequest, "invalid email address"
	case errors.Is(err, newsletter.ErrAlreadyProcessing):
		status, message = http.StatusConflict, "send is already being processed"
	case errors.Is(err, errBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, newsletter.ErrEmptyBody),
		errors.Is(err, newsletter.ErrNoDeliverableRecipients),
		errors.Is(err, newsletter.ErrSandboxSender):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, mailer.ErrNotConfigured):
		status, message = http.StatusUnprocessableEntity,
			"mail provider credentials are not configured, set the Resend API key"
	default:
		log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		status, message = http.StatusInternalServerError, "internal error"
	}

	respondJSON(w, status, errorResponse{Error: message})
}

// errBadRequest wraps client input problems so respondError classifies them.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

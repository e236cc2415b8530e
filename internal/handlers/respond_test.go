package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"mathblog/internal/domain"
	"mathblog/internal/newsletter"
	"mathblog/pkg/mailer"
)

func TestRespondError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"duplicate", domain.ErrDuplicate, http.StatusConflict},
		{"invalid email", newsletter.ErrInvalidEmail, http.StatusBadRequest},
		{"already processing", newsletter.ErrAlreadyProcessing, http.StatusConflict},
		{"bad request", badRequest("missing field"), http.StatusBadRequest},
		{"empty body", newsletter.ErrEmptyBody, http.StatusUnprocessableEntity},
		{"no deliverable recipients", newsletter.ErrNoDeliverableRecipients, http.StatusUnprocessableEntity},
		{"sandbox sender", newsletter.ErrSandboxSender, http.StatusUnprocessableEntity},
		{"missing provider credentials", mailer.ErrNotConfigured, http.StatusUnprocessableEntity},
		{"wrapped provider credentials", errors.Join(errors.New("deliver send"), mailer.ErrNotConfigured), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(rec, req, discardLogger(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathblog/internal/domain"
	"mathblog/internal/newsletter"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubDirectory struct {
	byEmail map[string]domain.Subscriber
	created []domain.Subscriber
}

func (s *stubDirectory) ConfirmedEmails(context.Context) ([]string, error) { return nil, nil }

func (s *stubDirectory) Create(_ context.Context, sub domain.Subscriber) (domain.Subscriber, error) {
	sub.ID = uuid.New()
	s.created = append(s.created, sub)
	return sub, nil
}

func (s *stubDirectory) GetByEmail(_ context.Context, email string) (domain.Subscriber, error) {
	if sub, ok := s.byEmail[email]; ok {
		return sub, nil
	}
	return domain.Subscriber{}, domain.ErrNotFound
}

func (s *stubDirectory) ConfirmByToken(_ context.Context, token string, at time.Time) (domain.Subscriber, error) {
	for _, sub := range s.byEmail {
		if sub.ConfirmationToken == token {
			sub.ConfirmedAt = &at
			return sub, nil
		}
	}
	return domain.Subscriber{}, domain.ErrNotFound
}

func (s *stubDirectory) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubDirectory) List(context.Context) ([]domain.Subscriber, error) {
	subs := make([]domain.Subscriber, 0, len(s.byEmail))
	for _, sub := range s.byEmail {
		subs = append(subs, sub)
	}
	return subs, nil
}

type stubSends struct {
	byID map[uuid.UUID]domain.Send
}

func (s *stubSends) Create(_ context.Context, send domain.Send) (domain.Send, error) {
	send.ID = uuid.New()
	return send, nil
}

func (s *stubSends) Get(_ context.Context, id uuid.UUID) (domain.Send, error) {
	if send, ok := s.byID[id]; ok {
		return send, nil
	}
	return domain.Send{}, domain.ErrNotFound
}

func (s *stubSends) List(context.Context) ([]domain.Send, error) {
	sends := make([]domain.Send, 0, len(s.byID))
	for _, send := range s.byID {
		sends = append(sends, send)
	}
	return sends, nil
}

func newTestNewsletterHandler(dir *stubDirectory, sends *stubSends) *NewsletterHandler {
	subs := newsletter.NewSubscriptions(dir, nil, "https://blog.test", false, discardLogger())
	return NewNewsletterHandler(subs, dir, sends, nil, nil, nil, nil, discardLogger())
}

func TestNewsletterHandler_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("creates subscriber", func(t *testing.T) {
		t.Parallel()
		dir := &stubDirectory{byEmail: map[string]domain.Subscriber{}}
		h := newTestNewsletterHandler(dir, nil)

		req := httptest.NewRequest(http.MethodPost, "/subscribe",
			strings.NewReader(`{"email":"reader@gmail.com"}`))
		rec := httptest.NewRecorder()
		h.Subscribe(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, dir.created, 1)
		assert.Equal(t, "reader@gmail.com", dir.created[0].Email)
	})

	t.Run("invalid email is a 400", func(t *testing.T) {
		t.Parallel()
		h := newTestNewsletterHandler(&stubDirectory{byEmail: map[string]domain.Subscriber{}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/subscribe",
			strings.NewReader(`{"email":"not-an-email"}`))
		rec := httptest.NewRecorder()
		h.Subscribe(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("confirmed duplicate is a 409", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		dir := &stubDirectory{byEmail: map[string]domain.Subscriber{
			"reader@gmail.com": {Email: "reader@gmail.com", ConfirmedAt: &now},
		}}
		h := newTestNewsletterHandler(dir, nil)

		req := httptest.NewRequest(http.MethodPost, "/subscribe",
			strings.NewReader(`{"email":"reader@gmail.com"}`))
		rec := httptest.NewRecorder()
		h.Subscribe(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		t.Parallel()
		h := newTestNewsletterHandler(&stubDirectory{byEmail: map[string]domain.Subscriber{}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		h.Subscribe(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNewsletterHandler_Confirm(t *testing.T) {
	t.Parallel()

	dir := &stubDirectory{byEmail: map[string]domain.Subscriber{
		"reader@gmail.com": {Email: "reader@gmail.com", ConfirmationToken: "tok-1"},
	}}
	h := newTestNewsletterHandler(dir, nil)

	rec := httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/confirm?token=tok-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confirmed":true`)

	rec = httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/confirm?token=unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsletterHandler_GetSend(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	sends := &stubSends{byID: map[uuid.UUID]domain.Send{
		id: {ID: id, Subject: "Hello"},
	}}
	h := newTestNewsletterHandler(&stubDirectory{}, sends)

	get := func(param string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/sends/"+param, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", param)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.GetSend(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get(id.String()).Code)
	assert.Equal(t, http.StatusNotFound, get(uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, get("not-a-uuid").Code)
}

func TestNewsletterHandler_CreateSend_Validation(t *testing.T) {
	t.Parallel()

	h := newTestNewsletterHandler(&stubDirectory{}, &stubSends{})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sends", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.CreateSend(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"body":"hi"}`).Code, "missing subject")
	assert.Equal(t, http.StatusBadRequest, post(`{"subject":"hi"}`).Code, "missing body")
	assert.Equal(t, http.StatusBadRequest, post(`{`).Code, "malformed JSON")
}

package newsletter

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mathblog/internal/domain"
	"mathblog/pkg/mailer"
)

type mockSubscriberDirectory struct{ mock.Mock }

func (m *mockSubscriberDirectory) ConfirmedEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	emails, _ := args.Get(0).([]string)
	return emails, args.Error(1)
}

func (m *mockSubscriberDirectory) Create(ctx context.Context, sub domain.Subscriber) (domain.Subscriber, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(domain.Subscriber), args.Error(1)
}

func (m *mockSubscriberDirectory) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Subscriber), args.Error(1)
}

func (m *mockSubscriberDirectory) ConfirmByToken(ctx context.Context, token string, at time.Time) (domain.Subscriber, error) {
	args := m.Called(ctx, token, at)
	return args.Get(0).(domain.Subscriber), args.Error(1)
}

func (m *mockSubscriberDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSubscriberDirectory) List(ctx context.Context) ([]domain.Subscriber, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]domain.Subscriber)
	return subs, args.Error(1)
}

type recordingSender struct {
	sent []*mailer.Email
}

func (r *recordingSender) Send(_ context.Context, email *mailer.Email) error {
	r.sent = append(r.sent, email)
	return nil
}

func confirmationMailer(sender mailer.Sender) *mailer.Mailer {
	fs := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(`<html>{{.Content}}</html>`)},
		"confirm.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Confirm your subscription\n---\nVisit {{.ConfirmURL}}\n"),
		},
	}
	return mailer.New(sender, mailer.NewRenderer(fs, mailer.RendererConfig{}), "base.html")
}

func TestSubscriptions_Subscribe_AutoConfirm(t *testing.T) {
	t.Parallel()

	dir := &mockSubscriberDirectory{}
	svc := NewSubscriptions(dir, nil, "https://blog.test", false, discardLogger())

	dir.On("GetByEmail", mock.Anything, "new@gmail.com").
		Return(domain.Subscriber{}, domain.ErrNotFound)
	dir.On("Create", mock.Anything, mock.MatchedBy(func(sub domain.Subscriber) bool {
		return sub.Email == "new@gmail.com" && sub.Confirmed() && sub.ConfirmationToken != ""
	})).Return(domain.Subscriber{ID: uuid.New(), Email: "new@gmail.com"}, nil)

	_, err := svc.Subscribe(context.Background(), "  New@Gmail.Com ")
	require.NoError(t, err)
	dir.AssertExpectations(t)
}

func TestSubscriptions_Subscribe_DoubleOptInSendsConfirmation(t *testing.T) {
	t.Parallel()

	dir := &mockSubscriberDirectory{}
	sender := &recordingSender{}
	svc := NewSubscriptions(dir, confirmationMailer(sender), "https://blog.test/", true, discardLogger())

	created := domain.Subscriber{
		ID:                uuid.New(),
		Email:             "new@gmail.com",
		ConfirmationToken: "tok-123",
	}
	dir.On("GetByEmail", mock.Anything, "new@gmail.com").
		Return(domain.Subscriber{}, domain.ErrNotFound)
	dir.On("Create", mock.Anything, mock.MatchedBy(func(sub domain.Subscriber) bool {
		return !sub.Confirmed()
	})).Return(created, nil)

	_, err := svc.Subscribe(context.Background(), "new@gmail.com")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"new@gmail.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "token=tok-123")
}

func TestSubscriptions_Subscribe_AlreadyConfirmed(t *testing.T) {
	t.Parallel()

	dir := &mockSubscriberDirectory{}
	svc := NewSubscriptions(dir, nil, "https://blog.test", false, discardLogger())

	now := time.Now()
	dir.On("GetByEmail", mock.Anything, "dup@gmail.com").
		Return(domain.Subscriber{Email: "dup@gmail.com", ConfirmedAt: &now}, nil)

	_, err := svc.Subscribe(context.Background(), "dup@gmail.com")
	require.ErrorIs(t, err, domain.ErrDuplicate)
	dir.AssertNotCalled(t, "Create")
}

func TestSubscriptions_Subscribe_InvalidEmail(t *testing.T) {
	t.Parallel()

	dir := &mockSubscriberDirectory{}
	svc := NewSubscriptions(dir, nil, "https://blog.test", false, discardLogger())

	for _, in := range []string{"", "nope", "a b@c.d", "<script>@x.y"} {
		_, err := svc.Subscribe(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidEmail, "input %q", in)
	}
	dir.AssertNotCalled(t, "GetByEmail")
}

func TestSubscriptions_Confirm(t *testing.T) {
	t.Parallel()

	dir := &mockSubscriberDirectory{}
	svc := NewSubscriptions(dir, nil, "https://blog.test", true, discardLogger())

	confirmed := domain.Subscriber{ID: uuid.New(), Email: "a@gmail.com"}
	dir.On("ConfirmByToken", mock.Anything, "tok", mock.Anything).Return(confirmed, nil)

	sub, err := svc.Confirm(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, confirmed.ID, sub.ID)

	_, err = svc.Confirm(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

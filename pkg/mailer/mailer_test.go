package mailer

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock implementation of Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Content}}</body></html>`),
		},
		"confirm.md": &fstest.MapFile{
			Data: []byte(`---
Subject: Confirm your subscription
---
Hi **{{.Email}}**, click [here]({{.ConfirmURL}}) to confirm.
`),
		},
	}
}

func TestMailer_Send_Success(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	renderer := NewRenderer(testFS(), RendererConfig{})
	m := New(mockSender, renderer, "base.html")

	mockSender.On("Send", mock.Anything, mock.MatchedBy(func(email *Email) bool {
		return email.To[0] == "alice@gmail.com" &&
			email.Subject == "Confirm your subscription" &&
			len(email.HTML) > 0 &&
			len(email.Text) > 0
	})).Return(nil)

	err := m.Send(context.Background(), SendParams{
		To:       "alice@gmail.com",
		Template: "confirm.md",
		Data:     map[string]string{"Email": "alice@gmail.com", "ConfirmURL": "https://blog.test/confirm?token=t"},
	})

	require.NoError(t, err)
	mockSender.AssertExpectations(t)
}

func TestMailer_Send_NoRecipient(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, NewRenderer(fstest.MapFS{}, RendererConfig{}), "base.html")

	err := m.Send(context.Background(), SendParams{Template: "confirm.md"})

	require.ErrorIs(t, err, ErrNoRecipient)
	mockSender.AssertNotCalled(t, "Send")
}

func TestMailer_Send_MissingTemplate(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, NewRenderer(fstest.MapFS{}, RendererConfig{}), "base.html")

	err := m.Send(context.Background(), SendParams{
		To:       "user@gmail.com",
		Template: "nonexistent.md",
	})

	require.ErrorIs(t, err, ErrRenderFailed)
	mockSender.AssertNotCalled(t, "Send")
}

func TestMailer_Send_SenderFailure(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, NewRenderer(testFS(), RendererConfig{}), "base.html")

	providerErr := errors.New("api unreachable")
	mockSender.On("Send", mock.Anything, mock.Anything).Return(providerErr)

	err := m.Send(context.Background(), SendParams{
		To:       "user@gmail.com",
		Template: "confirm.md",
		Data:     map[string]string{"Email": "user@gmail.com", "ConfirmURL": "x"},
	})

	require.ErrorIs(t, err, ErrSendFailed)
	require.ErrorIs(t, err, providerErr)
}

func TestRenderer_MarkdownAndLayout(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(testFS(), RendererConfig{})
	result, err := renderer.Render("base.html", "confirm.md", map[string]string{
		"Email":      "bob@gmail.com",
		"ConfirmURL": "https://blog.test/c",
	})

	require.NoError(t, err)
	require.Contains(t, result.HTML, "<strong>bob@gmail.com</strong>")
	require.Contains(t, result.HTML, "<html><body>")
	require.Equal(t, "Confirm your subscription", result.Metadata["Subject"])
	require.Contains(t, result.Text, "**bob@gmail.com**")
}

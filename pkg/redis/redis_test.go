package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "")
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("non-redis scheme returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		for _, url := range []string{"http://localhost:6379", "localhost:6379", "postgresql://localhost:6379"} {
			client, err := Open(ctx, url)
			require.Nil(t, client, url)
			require.ErrorIs(t, err, ErrFailedToParseURL, url)
		}
	})

	t.Run("malformed URL returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "redis://localhost:6379/notanumber")
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrFailedToParseURL)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	check := Healthcheck(nil)
	require.ErrorIs(t, check(context.Background()), ErrHealthcheckFailed)
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("calls Close on the client", func(t *testing.T) {
		t.Parallel()

		closer := &mockCloser{}
		require.NoError(t, Shutdown(closer)(context.Background()))
		require.True(t, closer.closed)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		t.Parallel()

		closeErr := errors.New("close error")
		closer := &mockCloser{err: closeErr}
		require.ErrorIs(t, Shutdown(closer)(context.Background()), closeErr)
		require.True(t, closer.closed)
	})
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 50*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}

type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)

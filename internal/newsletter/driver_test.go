package newsletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDriverFixture(cfg Config) (*processorFixture, *Driver) {
	f := newProcessorFixture(cfg)
	return f, NewDriver(f.proc, f.sends, cfg, discardLogger())
}

func TestDriver_RunDue_ProcessesEachRecord(t *testing.T) {
	t.Parallel()

	f, driver := newDriverFixture(Config{})
	now := time.Now()
	okID, failID := uuid.New(), uuid.New()

	f.sends.On("ListDue", mock.Anything, now).Return([]uuid.UUID{okID, failID}, nil)

	f.sends.On("Get", mock.Anything, okID).Return(customSend(okID, "Hi", "<p>x</p>"), nil)
	f.sends.On("Claim", mock.Anything, okID).Return(true, nil)
	f.sends.On("MarkSent", mock.Anything, okID, mock.Anything).Return(nil)

	failing := customSend(failID, "Hi", "<p>x</p>")
	failing.Attempts = 1
	f.sends.On("Get", mock.Anything, failID).Return(failing, nil)
	f.sends.On("Claim", mock.Anything, failID).Return(true, nil)
	f.sends.On("Release", mock.Anything, failID).Return(nil)

	f.subs.On("ConfirmedEmails", mock.Anything).Return([]string{"a@gmail.com"}, nil)
	f.sender.On("SendBatch", mock.Anything, mock.Anything).Return(nil).Once()
	f.sender.On("SendBatch", mock.Anything, mock.Anything).Return(errors.New("down")).Once()

	outcomes, err := driver.RunDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].OK())
	assert.Equal(t, 1, outcomes[0].RecipientCount)
	assert.False(t, outcomes[1].OK())
	assert.Contains(t, outcomes[1].Error, "down")
	assert.False(t, outcomes[1].DeadLettered)
	f.sends.AssertNotCalled(t, "MarkFailed")
}

func TestDriver_RunDue_DeadLettersExhaustedRecord(t *testing.T) {
	t.Parallel()

	f, driver := newDriverFixture(Config{MaxAttempts: 3})
	now := time.Now()
	id := uuid.New()

	// Attempts is observed after Release incremented it on this pass.
	exhausted := customSend(id, "Hi", "<p>x</p>")
	exhausted.Attempts = 3

	f.sends.On("ListDue", mock.Anything, now).Return([]uuid.UUID{id}, nil)
	f.sends.On("Get", mock.Anything, id).Return(exhausted, nil)
	f.sends.On("Claim", mock.Anything, id).Return(true, nil)
	f.sends.On("Release", mock.Anything, id).Return(nil)
	f.sends.On("MarkFailed", mock.Anything, id).Return(nil)
	f.subs.On("ConfirmedEmails", mock.Anything).Return([]string{"a@gmail.com"}, nil)
	f.sender.On("SendBatch", mock.Anything, mock.Anything).Return(errors.New("still down"))

	outcomes, err := driver.RunDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.False(t, outcomes[0].OK())
	assert.True(t, outcomes[0].DeadLettered)
	f.sends.AssertCalled(t, "MarkFailed", mock.Anything, id)
}

func TestDriver_RunDue_SkipsConcurrentlyClaimed(t *testing.T) {
	t.Parallel()

	f, driver := newDriverFixture(Config{})
	now := time.Now()
	id := uuid.New()

	f.sends.On("ListDue", mock.Anything, now).Return([]uuid.UUID{id}, nil)
	f.sends.On("Get", mock.Anything, id).Return(customSend(id, "Hi", "<p>x</p>"), nil)
	f.sends.On("Claim", mock.Anything, id).Return(false, nil)

	outcomes, err := driver.RunDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].OK())
	f.sends.AssertNotCalled(t, "MarkFailed")
	f.sends.AssertNotCalled(t, "Release")
}

func TestDriver_RunDue_ListFailure(t *testing.T) {
	t.Parallel()

	f, driver := newDriverFixture(Config{})
	now := time.Now()
	queryErr := errors.New("connection refused")
	f.sends.On("ListDue", mock.Anything, now).Return(nil, queryErr)

	_, err := driver.RunDue(context.Background(), now)
	require.ErrorIs(t, err, queryErr)
}

func TestDriver_RunDue_NothingDue(t *testing.T) {
	t.Parallel()

	f, driver := newDriverFixture(Config{})
	now := time.Now()
	f.sends.On("ListDue", mock.Anything, now).Return([]uuid.UUID{}, nil)

	outcomes, err := driver.RunDue(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRepository_DueQueryOnlyMatchesPastDueScheduled(t *testing.T) {
	t.Parallel()

	r := NewSendRepository(nil)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	sqlStr, args, err := r.dueQuery(now).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "sent_at IS NULL")
	assert.Contains(t, sqlStr, "status IN")
	assert.Contains(t, sqlStr, "scheduled_at <= ")
	assert.Contains(t, args, now)

	// Immediate sends carry no scheduled time; they must never match, or a
	// released one would be auto-redispatched by the poller.
	assert.NotContains(t, sqlStr, "scheduled_at IS NULL")
}

func TestSendRepository_DueQueryOrdersOldestFirst(t *testing.T) {
	t.Parallel()

	r := NewSendRepository(nil)

	sqlStr, _, err := r.dueQuery(time.Now()).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "ORDER BY scheduled_at ASC")
}

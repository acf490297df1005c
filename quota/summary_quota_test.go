package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tube-brief/config"
	"tube-brief/quota"
)

func newLimiter(perMinute, perDay int) *quota.SummaryQuotaLimiter {
	cfg := config.AppConfig{}
	cfg.SummaryQuota.RequestsPerMinute = perMinute
	cfg.SummaryQuota.RequestsPerDay = perDay
	return quota.NewSummaryQuotaLimiterFromConfig(cfg)
}

func TestWaitAndReserveDailyLimit(t *testing.T) {
	l := newLimiter(0, 1)

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWaitAndReserveUnlimited(t *testing.T) {
	l := newLimiter(0, 0)

	for i := 0; i < 10; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestWaitAndReserveSpacesCalls(t *testing.T) {
	// 600 per minute gives a 100ms interval, short enough to test.
	l := newLimiter(600, 0)

	_, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)

	start := time.Now()
	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitAndReserveCancelledWhileWaiting(t *testing.T) {
	// 2 per minute forces a 30s wait for the second call.
	l := newLimiter(2, 0)

	_, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ok, err := l.WaitAndReserve(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

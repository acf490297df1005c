package quota

import (
	"context"
	"sync"
	"time"

	"tube-brief/config"
)

// SummaryQuotaLimiter enforces per-minute and per-day limits on summary
// pipeline admissions. It is in-memory and assumes a single server instance;
// counters reset on restart.
type SummaryQuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// NewSummaryQuotaLimiterFromConfig builds a limiter from the summary_quota
// section of config.yaml. A value of 0 or below disables that direction.
func NewSummaryQuotaLimiterFromConfig(cfg config.AppConfig) *SummaryQuotaLimiter {
	q := cfg.SummaryQuota

	requestsPerDay := q.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	requestsPerMinute := q.RequestsPerMinute
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &SummaryQuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
	}
}

// WaitAndReserve applies the per-minute and daily limits before a pipeline
// admission.
//   - (false, nil): the daily quota is exhausted; the caller must reject.
//   - (false, err): the context was cancelled while waiting.
//   - (true, nil): a slot was reserved.
func (l *SummaryQuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := time.Now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			nextAllowed := l.lastCall.Add(l.interval)
			delay = time.Until(nextAllowed)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		// Release the lock while waiting, then re-evaluate.
		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

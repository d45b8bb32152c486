package apify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
)

const quotaWindow = 24 * time.Hour

// ErrRunQuotaExhausted is returned when no task runs are left in the
// current quota window.
var ErrRunQuotaExhausted = errors.New("apify run quota exhausted")

// RunQuotaError reports an exhausted window and when it reopens.
type RunQuotaError struct {
	Used    int64
	Limit   int64
	ResetAt time.Time
}

func (e *RunQuotaError) Error() string {
	return fmt.Sprintf("%s (%d/%d runs, resets %s)",
		ErrRunQuotaExhausted, e.Used, e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}

// Unwrap lets errors.Is match ErrRunQuotaExhausted.
func (*RunQuotaError) Unwrap() error { return ErrRunQuotaExhausted }

// Quota is a point-in-time view of the run quota.
type Quota struct {
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

// RunLimiter paces task run submissions and caps how many start in a
// rolling 24-hour window. Every run is billed by Apify, so the cap is
// checked before the pacing wait.
type RunLimiter struct {
	pace    *rate.Limiter
	limit   int64
	nowFunc func() time.Time

	mu      sync.Mutex
	used    int64
	resetAt time.Time
}

// RunLimiterOption configures the RunLimiter.
type RunLimiterOption func(*RunLimiter)

// WithRunLimiterNowFunc overrides the time function for testing.
func WithRunLimiterNowFunc(f func() time.Time) RunLimiterOption {
	return func(l *RunLimiter) {
		l.nowFunc = f
	}
}

// NewRunLimiter allows perSecond run submissions with the given burst and
// at most limit runs per window.
func NewRunLimiter(perSecond float64, burst int, limit int64, opts ...RunLimiterOption) *RunLimiter {
	l := &RunLimiter{
		pace:    rate.NewLimiter(rate.Limit(perSecond), burst),
		limit:   limit,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.resetAt = l.nowFunc().Add(quotaWindow)
	return l
}

// AcquireRun reserves one run from the quota, then waits for the pacing
// limiter. A run is not counted if ctx ends during the wait.
func (l *RunLimiter) AcquireRun(ctx context.Context) error {
	l.mu.Lock()
	l.rollWindow()
	if l.used >= l.limit {
		qerr := &RunQuotaError{Used: l.used, Limit: l.limit, ResetAt: l.resetAt}
		l.mu.Unlock()
		metrics.ApifyDailyLimitHits.Inc()
		return qerr
	}
	l.used++
	used := l.used
	l.mu.Unlock()

	if err := l.pace.Wait(ctx); err != nil {
		l.release()
		return fmt.Errorf("waiting for run slot: %w", err)
	}

	metrics.ApifyDailyUsage.Set(float64(used))
	return nil
}

// Quota returns the current window's usage.
func (l *RunLimiter) Quota() Quota {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindow()
	return Quota{
		Limit:     l.limit,
		Used:      l.used,
		Remaining: max(l.limit-l.used, 0),
		ResetAt:   l.resetAt,
	}
}

func (l *RunLimiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used > 0 {
		l.used--
	}
}

// rollWindow starts a new window once the current one has expired.
// Callers hold mu.
func (l *RunLimiter) rollWindow() {
	now := l.nowFunc()
	if now.After(l.resetAt) {
		l.used = 0
		l.resetAt = now.Add(quotaWindow)
		metrics.ApifyDailyUsage.Set(0)
	}
}

// Package eventlog keeps the most recent webhook events in memory for the
// debug endpoints. Nothing is persisted.
package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// DefaultCapacity is the number of events kept when none is configured.
const DefaultCapacity = 20

// Log is a fixed-capacity ring of events. New events go to the front and
// the oldest is evicted once the log is full. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	buf     []domain.Event
	head    int // index of the most recent event
	size    int
	nowFunc func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(l *Log) {
		l.nowFunc = f
	}
}

// New creates a Log holding at most capacity events. A non-positive
// capacity uses DefaultCapacity.
func New(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		buf:     make([]domain.Event, capacity),
		head:    -1,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add records an event, assigning an ID and receive time when unset, and
// returns the stored copy.
func (l *Log) Add(e domain.Event) domain.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = l.nowFunc().UTC()
	}

	l.mu.Lock()
	l.head = (l.head + 1) % len(l.buf)
	l.buf[l.head] = e
	if l.size < len(l.buf) {
		l.size++
	}
	size := l.size
	l.mu.Unlock()

	metrics.EventLogSize.Set(float64(size))
	return e
}

// Recent returns up to limit events, most recent first. A non-positive
// limit returns everything held.
func (l *Log) Recent(limit int) []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.Event, 0, n)
	for i := range n {
		idx := (l.head - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns the number of events held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the maximum number of events held.
func (l *Log) Capacity() int {
	return len(l.buf)
}

package eventlog_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cploetz77/port-to-port-map-generator/internal/eventlog"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

func orderIDs(events []domain.Event) []string {
	ids := make([]string, 0, len(events))
	for i := range events {
		ids = append(ids, events[i].OrderID)
	}
	return ids
}

func TestLog_MostRecentFirst(t *testing.T) {
	t.Parallel()

	l := eventlog.New(5)
	for i := 1; i <= 3; i++ {
		l.Add(domain.Event{OrderID: fmt.Sprint(i)})
	}

	assert.Equal(t, []string{"3", "2", "1"}, orderIDs(l.Recent(0)))
	assert.Equal(t, 3, l.Len())
}

func TestLog_EvictsOldest(t *testing.T) {
	t.Parallel()

	l := eventlog.New(3)
	for i := 1; i <= 7; i++ {
		l.Add(domain.Event{OrderID: fmt.Sprint(i)})
	}

	assert.Equal(t, []string{"7", "6", "5"}, orderIDs(l.Recent(0)))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.Capacity())
}

func TestLog_RecentLimit(t *testing.T) {
	t.Parallel()

	l := eventlog.New(10)
	for i := 1; i <= 4; i++ {
		l.Add(domain.Event{OrderID: fmt.Sprint(i)})
	}

	assert.Equal(t, []string{"4", "3"}, orderIDs(l.Recent(2)))
	assert.Len(t, l.Recent(50), 4)
}

func TestLog_Empty(t *testing.T) {
	t.Parallel()

	l := eventlog.New(0)
	assert.Equal(t, eventlog.DefaultCapacity, l.Capacity())
	assert.Empty(t, l.Recent(0))
	assert.NotNil(t, l.Recent(0))
}

func TestLog_AddAssignsIDAndTime(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 12, 6, 14, 30, 0, 0, time.UTC)
	l := eventlog.New(2, eventlog.WithNowFunc(func() time.Time { return fixed }))

	stored := l.Add(domain.Event{Status: domain.EventProcessed})
	require.NotEmpty(t, stored.ID)
	assert.Equal(t, fixed, stored.ReceivedAt)

	kept := l.Add(domain.Event{ID: "given", ReceivedAt: fixed.Add(time.Hour)})
	assert.Equal(t, "given", kept.ID)
	assert.Equal(t, fixed.Add(time.Hour), kept.ReceivedAt)
}

func TestLog_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	l := eventlog.New(20)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add(domain.Event{OrderID: fmt.Sprint(i)})
			_ = l.Recent(5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, l.Len())
	assert.Len(t, l.Recent(0), 20)
}

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
)

type stubScanner struct {
	breaches []domain.BreachRecord
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *stubScanner) ScanBreaches(context.Context) ([]domain.BreachRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.breaches, s.err
}

type memoryMarker struct {
	seen map[string]bool
	err  error
}

func (m *memoryMarker) MarkBreachNotified(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func testBreaches() []domain.BreachRecord {
	due := time.Date(2024, 7, 1, 13, 0, 0, 0, time.UTC)
	return []domain.BreachRecord{
		{TicketID: 1, BreachType: domain.BreachTypeFirstResponse, DueAt: due},
		{TicketID: 1, BreachType: domain.BreachTypeResolution, DueAt: due.Add(24 * time.Hour)},
	}
}

func newMonitor(scanner BreachScanner, marker BreachMarker, metrics *observability.Metrics) (*BreachMonitor, *[]events.Event) {
	published := &[]events.Event{}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventSLABreached, func(_ context.Context, e events.Event) error {
		*published = append(*published, e)
		return nil
	})
	return NewBreachMonitor(BreachMonitorDependencies{
		Scanner:    scanner,
		Marker:     marker,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		DedupeTTL:  time.Hour,
	}), published
}

func TestRunOnceNotifiesEachBreachOnce(t *testing.T) {
	metrics := observability.NewMetrics()
	monitor, published := newMonitor(&stubScanner{breaches: testBreaches()}, &memoryMarker{seen: map[string]bool{}}, metrics)
	ctx := context.Background()

	result, err := monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Breaches, 2)
	assert.Equal(t, 2, result.Notified)
	require.Len(t, *published, 2)
	payload, ok := (*published)[0].Payload.(events.SLABreachedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.BreachTypeFirstResponse, payload.Breach.BreachType)

	result, err = monitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Notified)
	assert.Len(t, *published, 2)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.BreachScans)
	assert.Equal(t, int64(2), snap.Breaches["first_response"])
}

func TestRunOnceNotifiesWhenDedupeFails(t *testing.T) {
	monitor, published := newMonitor(&stubScanner{breaches: testBreaches()}, &memoryMarker{err: errors.New("redis down")}, nil)
	result, err := monitor.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Notified)
	assert.Len(t, *published, 2)
}

func TestRunOnceScannerError(t *testing.T) {
	monitor, published := newMonitor(&stubScanner{err: errors.New("db down")}, nil, nil)
	_, err := monitor.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, *published)
}

func TestRunStopsWithContext(t *testing.T) {
	scanner := &stubScanner{}
	monitor := NewBreachMonitor(BreachMonitorDependencies{Scanner: scanner, Interval: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	assert.GreaterOrEqual(t, scanner.calls, 1)
}

func TestRunDisabled(t *testing.T) {
	scanner := &stubScanner{}
	NewBreachMonitor(BreachMonitorDependencies{Scanner: scanner}).Run(context.Background())
	assert.Equal(t, 0, scanner.calls)
}

func TestBreachKeyIgnoresObservationTime(t *testing.T) {
	b := testBreaches()[0]
	later := b
	later.BreachDuration = time.Hour
	assert.Equal(t, breachKey(b), breachKey(later))
	assert.NotEqual(t, breachKey(b), breachKey(testBreaches()[1]))
}

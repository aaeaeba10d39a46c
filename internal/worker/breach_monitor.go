package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
)

// BreachScanner produces the current breach list.
type BreachScanner interface {
	ScanBreaches(ctx context.Context) ([]domain.BreachRecord, error)
}

// BreachMarker remembers which breaches were already announced.
type BreachMarker interface {
	MarkBreachNotified(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// BreachMonitor periodically scans for SLA breaches and publishes one
// sla_breached event per breach and dedupe window.
type BreachMonitor struct {
	scanner    BreachScanner
	marker     BreachMarker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	interval   time.Duration
	dedupeTTL  time.Duration
	now        func() time.Time
}

// BreachMonitorDependencies bundles collaborators for the monitor.
type BreachMonitorDependencies struct {
	Scanner    BreachScanner
	Marker     BreachMarker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Interval   time.Duration
	DedupeTTL  time.Duration
}

// ScanResult summarizes one monitor pass.
type ScanResult struct {
	Breaches []domain.BreachRecord
	Notified int
}

// NewBreachMonitor constructs the monitor.
func NewBreachMonitor(deps BreachMonitorDependencies) *BreachMonitor {
	m := &BreachMonitor{
		scanner:    deps.Scanner,
		marker:     deps.Marker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		interval:   deps.Interval,
		dedupeTTL:  deps.DedupeTTL,
		now:        time.Now,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Run scans immediately and then every interval until ctx is done. A
// non-positive interval disables the loop.
func (m *BreachMonitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Info("breach monitor disabled")
		return
	}
	m.logger.Info("breach monitor started", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error("breach scan failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			m.logger.Info("breach monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single scan and notifies new breaches.
func (m *BreachMonitor) RunOnce(ctx context.Context) (ScanResult, error) {
	breaches, err := m.scanner.ScanBreaches(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{Breaches: breaches}
	byType := map[string]int{}
	for _, b := range breaches {
		byType[string(b.BreachType)]++

		first, err := m.markFirst(ctx, b)
		if err != nil {
			m.logger.Warn("breach dedupe unavailable; notifying anyway",
				zap.Int64("ticket_id", b.TicketID), zap.Error(err))
			first = true
		}
		if !first {
			continue
		}
		result.Notified++
		if m.dispatcher == nil {
			continue
		}
		event := events.NewEvent(events.EventSLABreached, b.TicketID, events.SLABreachedPayload{Breach: b})
		if err := m.dispatcher.Publish(ctx, event); err != nil {
			m.logger.Warn("breach notification failed", zap.Int64("ticket_id", b.TicketID), zap.Error(err))
		}
	}
	m.metrics.RecordBreachScan(m.now().UTC(), byType)

	m.logger.Info("breach scan completed",
		zap.Int("breaches", len(breaches)),
		zap.Int("notified", result.Notified))
	return result, nil
}

func (m *BreachMonitor) markFirst(ctx context.Context, b domain.BreachRecord) (bool, error) {
	if m.marker == nil {
		return true, nil
	}
	return m.marker.MarkBreachNotified(ctx, breachKey(b), m.dedupeTTL)
}

// breachKey identifies a breach independently of when it was observed.
func breachKey(b domain.BreachRecord) string {
	return fmt.Sprintf("%d:%s:%d", b.TicketID, b.BreachType, b.DueAt.Unix())
}

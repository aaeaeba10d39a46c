package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

func ptr[T any](v T) *T {
	return &v
}

func TestSLAServiceScanBreaches(t *testing.T) {
	now := monday9.Add(30 * time.Hour)
	repo := newFakeTicketRepo()
	repo.put(domain.Ticket{ID: 1, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh,
		FirstResponseDue: monday9.Add(time.Hour), ResolutionDue: now.Add(-time.Minute)})
	repo.put(domain.Ticket{ID: 2, Status: domain.TicketStatusResolved, ResolvedAt: ptr(monday9),
		FirstResponseAt: ptr(monday9), FirstResponseDue: monday9, ResolutionDue: monday9})

	svc := NewSLAService(SLADependencies{TicketRepo: repo, Engine: testEngine(t), Clock: fixedClock(now)})
	breaches, err := svc.ScanBreaches(context.Background())
	require.NoError(t, err)
	require.Len(t, breaches, 2)
	assert.Equal(t, domain.BreachTypeFirstResponse, breaches[0].BreachType)
	assert.Equal(t, domain.BreachTypeResolution, breaches[1].BreachType)
	assert.Equal(t, time.Minute, breaches[1].BreachDuration)
}

func TestSLAServiceScanBreachesStoreError(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.err = errors.New("connection refused")
	svc := NewSLAService(SLADependencies{TicketRepo: repo, Engine: testEngine(t)})

	_, err := svc.ScanBreaches(context.Background())
	requireDomainCode(t, err, "INTERNAL_ERROR", http.StatusInternalServerError)
}

func TestSLAServiceBuildReport(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.put(domain.Ticket{ID: 1, Category: "billing", CreatedAt: monday9,
		FirstResponseAt: ptr(monday9.Add(time.Hour)), FirstResponseDue: monday9.Add(4 * time.Hour), ResolutionDue: monday9.Add(24 * time.Hour)})
	repo.put(domain.Ticket{ID: 2, Category: "technical", CreatedAt: monday9,
		FirstResponseDue: monday9.Add(4 * time.Hour), ResolutionDue: monday9.Add(24 * time.Hour)})
	svc := NewSLAService(SLADependencies{TicketRepo: repo, Engine: testEngine(t)})

	report, err := svc.BuildReport(context.Background(), monday9.Add(-time.Hour), monday9.Add(time.Hour), ptr("billing"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalTickets)
	assert.Equal(t, 100.0, report.FirstResponse.CompliantRate)

	report, err = svc.BuildReport(context.Background(), monday9.Add(-time.Hour), monday9.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTickets)
	assert.Equal(t, 50.0, report.FirstResponse.CompliantRate)
}

func TestSLAServiceBuildReportRejectsInvertedRange(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.err = errors.New("must not be queried")
	svc := NewSLAService(SLADependencies{TicketRepo: repo, Engine: testEngine(t)})

	_, err := svc.BuildReport(context.Background(), monday9, monday9.Add(-time.Hour), nil)
	requireDomainCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
	assert.ErrorIs(t, err, sla.ErrInvalidArgument)
}

func TestSLAServiceTargets(t *testing.T) {
	fallback := sla.Hours{FirstResponse: 2, Resolution: 16}
	table, err := sla.NewTargetTable([]domain.SLATarget{
		{CustomerTier: domain.CustomerTierStandard, Priority: domain.TicketPriorityLow, FirstResponseHours: 8, ResolutionHours: 40},
	}, &fallback)
	require.NoError(t, err)

	svc := NewSLAService(SLADependencies{Targets: table})
	targets, def := svc.Targets()
	assert.Len(t, targets, 1)
	require.NotNil(t, def)
	assert.Equal(t, fallback, *def)

	targets, def = NewSLAService(SLADependencies{}).Targets()
	assert.Empty(t, targets)
	assert.Nil(t, def)
}

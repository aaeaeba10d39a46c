package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// TargetLister exposes the effective target table.
type TargetLister interface {
	Targets() []domain.SLATarget
	Fallback() (sla.Hours, bool)
}

// SLAService runs the engine against store snapshots.
type SLAService struct {
	tickets repository.TicketRepository
	engine  *sla.Engine
	targets TargetLister
	now     func() time.Time
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	TicketRepo repository.TicketRepository
	Engine     *sla.Engine
	Targets    TargetLister
	Clock      func() time.Time
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	svc := &SLAService{
		tickets: deps.TicketRepo,
		engine:  deps.Engine,
		targets: deps.Targets,
		now:     deps.Clock,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// ScanBreaches lists missed milestones as of now.
func (s *SLAService) ScanBreaches(ctx context.Context) ([]domain.BreachRecord, error) {
	tickets, err := s.tickets.QueryOpenCandidates(ctx)
	if err != nil {
		return nil, mapError(err, "ticket", nil)
	}
	return s.engine.ScanBreaches(tickets, s.now().UTC()), nil
}

// BuildReport aggregates compliance for tickets created in [start, end].
func (s *SLAService) BuildReport(ctx context.Context, start, end time.Time, category *string) (domain.SLAReport, error) {
	if err := sla.ValidateRange(start, end); err != nil {
		return domain.SLAReport{}, mapError(err, "", nil)
	}
	tickets, err := s.tickets.QueryByCreatedRange(ctx, start, end, category)
	if err != nil {
		return domain.SLAReport{}, mapError(err, "ticket", nil)
	}
	report, err := s.engine.BuildReport(tickets, start, end, category)
	if err != nil {
		return domain.SLAReport{}, mapError(err, "", nil)
	}
	return report, nil
}

// Targets returns the configured table and the fallback pair, if any.
func (s *SLAService) Targets() ([]domain.SLATarget, *sla.Hours) {
	if s.targets == nil {
		return []domain.SLATarget{}, nil
	}
	var fallback *sla.Hours
	if h, ok := s.targets.Fallback(); ok {
		fallback = &h
	}
	return s.targets.Targets(), fallback
}

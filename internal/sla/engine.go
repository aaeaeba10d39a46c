package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// Targets are the due instants attached to a ticket at creation.
type Targets struct {
	FirstResponseDue time.Time
	ResolutionDue    time.Time
}

// CustomerLookup finds the tier of a customer. ok is false when the
// customer does not exist.
type CustomerLookup interface {
	CustomerTier(ctx context.Context, customerID int64) (tier domain.CustomerTier, ok bool, err error)
}

// Engine computes due-dates, detects breaches and aggregates compliance.
// It holds no mutable state and never performs I/O on its own.
type Engine struct {
	calendar *Calendar
	targets  Lookup
}

// NewEngine wires the engine to its calendar and target lookup.
func NewEngine(calendar *Calendar, targets Lookup) *Engine {
	return &Engine{calendar: calendar, targets: targets}
}

// Calendar exposes the business calendar in use.
func (e *Engine) Calendar() *Calendar {
	return e.calendar
}

// ComputeTargets resolves the ticket's SLA budgets and converts them into
// due instants counted from CreatedAt.
func (e *Engine) ComputeTargets(ticket *domain.Ticket) (Targets, error) {
	if ticket == nil {
		return Targets{}, fmt.Errorf("%w: ticket required", ErrInvalidArgument)
	}
	if ticket.CreatedAt.IsZero() {
		return Targets{}, fmt.Errorf("%w: ticket creation time required", ErrInvalidArgument)
	}
	hours, err := e.targets.Resolve(tierOrDefault(ticket.CustomerTier), ticket.Priority)
	if err != nil {
		return Targets{}, err
	}
	firstResponse, err := e.calendar.AddBusinessHours(ticket.CreatedAt, hours.FirstResponse)
	if err != nil {
		return Targets{}, fmt.Errorf("first response due: %w", err)
	}
	resolution, err := e.calendar.AddBusinessHours(ticket.CreatedAt, hours.Resolution)
	if err != nil {
		return Targets{}, fmt.Errorf("resolution due: %w", err)
	}
	return Targets{FirstResponseDue: firstResponse, ResolutionDue: resolution}, nil
}

// ScanBreaches returns one record per missed milestone. All first-response
// records precede all resolution records; input order is kept within each
// type. Closed tickets and tickets without due-dates never breach.
func (e *Engine) ScanBreaches(tickets []domain.Ticket, now time.Time) []domain.BreachRecord {
	firstResponse := make([]domain.BreachRecord, 0)
	resolution := make([]domain.BreachRecord, 0)
	for i := range tickets {
		t := &tickets[i]
		if t.IsClosed() {
			continue
		}
		if FirstResponseBreached(t, now) {
			firstResponse = append(firstResponse, breachRecord(t, domain.BreachTypeFirstResponse, t.FirstResponseDue, now))
		}
		if ResolutionBreached(t, now) {
			resolution = append(resolution, breachRecord(t, domain.BreachTypeResolution, t.ResolutionDue, now))
		}
	}
	return append(firstResponse, resolution...)
}

// FirstResponseBreached reports whether the ticket has no first response and
// is past its first-response due instant.
func FirstResponseBreached(t *domain.Ticket, now time.Time) bool {
	return !t.IsClosed() && t.FirstResponseAt == nil && pastDue(t.FirstResponseDue, now)
}

// ResolutionBreached reports whether the ticket is unresolved and past its
// resolution due instant.
func ResolutionBreached(t *domain.Ticket, now time.Time) bool {
	return !t.IsClosed() && t.ResolvedAt == nil && pastDue(t.ResolutionDue, now)
}

// ResolveCustomerTier returns the tier of the ticket's customer, defaulting
// to standard when the ticket has no customer or the customer is unknown.
func ResolveCustomerTier(ctx context.Context, ticket *domain.Ticket, customers CustomerLookup) (domain.CustomerTier, error) {
	if ticket == nil || ticket.CustomerID == nil || customers == nil {
		return domain.CustomerTierStandard, nil
	}
	tier, ok, err := customers.CustomerTier(ctx, *ticket.CustomerID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.CustomerTierStandard, nil
	}
	return tierOrDefault(tier), nil
}

func pastDue(due, now time.Time) bool {
	return !due.IsZero() && now.After(due)
}

func breachRecord(t *domain.Ticket, kind domain.BreachType, due, now time.Time) domain.BreachRecord {
	return domain.BreachRecord{
		TicketID:       t.ID,
		BreachType:     kind,
		BreachDuration: now.Sub(due),
		Priority:       t.Priority,
		CustomerTier:   tierOrDefault(t.CustomerTier),
		DueAt:          due,
	}
}

func tierOrDefault(tier domain.CustomerTier) domain.CustomerTier {
	if tier == "" {
		return domain.CustomerTierStandard
	}
	return tier
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	logs       repository.TicketLogRepository
	customers  sla.CustomerLookup
	engine     *sla.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	LogRepo    repository.TicketLogRepository
	Customers  sla.CustomerLookup
	Engine     *sla.Engine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Urgency     string
	Impact      string
	CustomerID  *int64
}

// TicketListFilter describes listing filters. SLABreach=true restricts the
// result to tickets with a missed milestone; false is the same as unset.
type TicketListFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Category   *string
	AssignedTo *int64
	SLABreach  *bool
	Limit      int
	Offset     int
}

// TicketUpdateInput is a partial update; nil fields are left unchanged.
type TicketUpdateInput struct {
	Title              *string
	Description        *string
	Priority           *domain.TicketPriority
	Category           *string
	Urgency            *string
	Impact             *string
	Status             *domain.TicketStatus
	AssignedTo         *int64
	SatisfactionRating *int
	FeedbackComment    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		logs:       deps.LogRepo,
		customers:  deps.Customers,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateTicket stamps the creation time, computes both due-dates and inserts
// the ticket in a single write.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Category:    orDefault(input.Category, domain.DefaultCategory),
		Urgency:     orDefault(input.Urgency, domain.DefaultLevel),
		Impact:      orDefault(input.Impact, domain.DefaultLevel),
		Status:      domain.TicketStatusOpen,
		CustomerID:  input.CustomerID,
		CreatedAt:   s.now().UTC(),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": ticket.Priority})
	}

	tier, err := sla.ResolveCustomerTier(ctx, ticket, s.customers)
	if err != nil {
		return nil, mapError(err, "customer", nil)
	}
	ticket.CustomerTier = tier

	targets, err := s.engine.ComputeTargets(ticket)
	if err != nil {
		s.logger.Error("compute sla targets", zap.Error(err),
			zap.String("priority", string(ticket.Priority)), zap.String("tier", string(tier)))
		return nil, mapError(err, "", nil)
	}
	ticket.FirstResponseDue = targets.FirstResponseDue
	ticket.ResolutionDue = targets.ResolutionDue

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapError(err, "ticket", nil)
	}
	s.addLog(ctx, ticket.ID, domain.LogActionCreated, fmt.Sprintf("Ticket created with priority %s", ticket.Priority))
	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		Priority:         ticket.Priority,
		CustomerTier:     ticket.CustomerTier,
		Title:            ticket.Title,
		FirstResponseDue: ticket.FirstResponseDue,
		ResolutionDue:    ticket.ResolutionDue,
	}))
	return ticket, nil
}

// ListTickets returns a page of tickets.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		Category:   filter.Category,
		AssignedTo: filter.AssignedTo,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.SLABreach != nil && *filter.SLABreach {
		now := s.now().UTC()
		repoFilter.BreachedAt = &now
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, mapError(err, "ticket", nil)
	}
	return tickets, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

// UpdateTicket applies a partial update. Status transitions stamp the SLA
// milestones: in_progress sets first_response_at once, resolved sets
// resolved_at, closed sets closed_at. Due-dates are never recomputed.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}

	oldStatus := ticket.Status
	applyUpdate(ticket, input)

	now := s.now().UTC()
	action := domain.LogActionUpdated
	if ticket.Status != oldStatus {
		switch ticket.Status {
		case domain.TicketStatusInProgress:
			if ticket.FirstResponseAt == nil {
				ticket.FirstResponseAt = &now
			}
		case domain.TicketStatusResolved:
			ticket.ResolvedAt = &now
			action = domain.LogActionResolved
		case domain.TicketStatusClosed:
			ticket.ClosedAt = &now
			action = domain.LogActionClosed
		}
	}
	ticket.UpdatedAt = &now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}

	description := "Ticket updated"
	if ticket.Status != oldStatus {
		description = fmt.Sprintf("Status changed from %s to %s", oldStatus, ticket.Status)
	}
	s.addLog(ctx, ticket.ID, action, description)
	s.publishEvent(ctx, events.NewEvent(events.EventTicketUpdated, ticket.ID, events.TicketUpdatedPayload{
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
	}))
	return ticket, nil
}

// EscalateTicket raises the priority one step and records the reason.
func (s *TicketService) EscalateTicket(ctx context.Context, id int64, reason string) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("escalation reason required", nil)
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": id})
	}

	now := s.now().UTC()
	oldPriority := ticket.Priority
	ticket.Priority = oldPriority.Escalated()
	ticket.EscalatedAt = &now
	ticket.EscalationReason = &reason
	ticket.UpdatedAt = &now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}
	s.addLog(ctx, ticket.ID, domain.LogActionEscalated,
		fmt.Sprintf("Escalated from %s to %s: %s", oldPriority, ticket.Priority, reason))
	s.publishEvent(ctx, events.NewEvent(events.EventTicketEscalated, ticket.ID, events.TicketEscalatedPayload{
		OldPriority: oldPriority,
		NewPriority: ticket.Priority,
		Reason:      reason,
	}))
	return ticket, nil
}

// ListTicketLogs returns the audit trail of a ticket.
func (s *TicketService) ListTicketLogs(ctx context.Context, id int64) ([]domain.TicketLog, error) {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByTicket(ctx, id)
	if err != nil {
		return nil, mapError(err, "ticket", nil)
	}
	return logs, nil
}

func applyUpdate(ticket *domain.Ticket, input TicketUpdateInput) {
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if input.Urgency != nil {
		ticket.Urgency = *input.Urgency
	}
	if input.Impact != nil {
		ticket.Impact = *input.Impact
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = input.AssignedTo
	}
	if input.SatisfactionRating != nil {
		ticket.SatisfactionRating = input.SatisfactionRating
	}
	if input.FeedbackComment != nil {
		ticket.FeedbackComment = input.FeedbackComment
	}
}

// Audit entries are best effort; a failed log write does not fail the request.
func (s *TicketService) addLog(ctx context.Context, ticketID int64, action domain.TicketLogAction, description string) {
	if s.logs == nil {
		return
	}
	entry := &domain.TicketLog{TicketID: ticketID, Action: action, Description: description}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("write ticket log", zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

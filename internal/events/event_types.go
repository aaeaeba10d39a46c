package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketEscalated EventType = "ticket_escalated"
	EventSLABreached     EventType = "sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps a fresh ID and time.
func NewEvent(eventType EventType, ticketID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority         domain.TicketPriority `json:"priority"`
	CustomerTier     domain.CustomerTier   `json:"customer_tier"`
	Title            string                `json:"title"`
	FirstResponseDue time.Time             `json:"first_response_due"`
	ResolutionDue    time.Time             `json:"resolution_due"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	Reason      string                `json:"reason"`
}

// SLABreachedPayload wraps one breach record.
type SLABreachedPayload struct {
	Breach domain.BreachRecord `json:"breach"`
}

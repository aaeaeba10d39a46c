package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow       TicketPriority = "low"
	TicketPriorityMedium    TicketPriority = "medium"
	TicketPriorityHigh      TicketPriority = "high"
	TicketPriorityCritical  TicketPriority = "critical"
	TicketPriorityEmergency TicketPriority = "emergency"
)

// PriorityLadder is the escalation order, lowest first.
var PriorityLadder = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
	TicketPriorityEmergency,
}

// Valid reports whether p is on the priority ladder.
func (p TicketPriority) Valid() bool {
	for _, candidate := range PriorityLadder {
		if candidate == p {
			return true
		}
	}
	return false
}

// Escalated returns the next priority up the ladder. The top priority
// escalates to itself.
func (p TicketPriority) Escalated() TicketPriority {
	for i, candidate := range PriorityLadder {
		if candidate == p && i < len(PriorityLadder)-1 {
			return PriorityLadder[i+1]
		}
	}
	return p
}

// Default classification values used when the caller does not provide them.
const (
	DefaultCategory = "general"
	DefaultLevel    = "medium"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	Title       string
	Description string

	Priority TicketPriority
	Category string
	Urgency  string
	Impact   string
	Status   TicketStatus

	CustomerID *int64
	AssignedTo *int64
	// CustomerTier is resolved from the customer at read/creation time and
	// is not a stored column.
	CustomerTier CustomerTier

	CreatedAt       time.Time
	UpdatedAt       *time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time

	FirstResponseDue time.Time
	ResolutionDue    time.Time

	EscalatedAt      *time.Time
	EscalationReason *string

	SatisfactionRating *int
	FeedbackComment    *string
}

// IsClosed reports whether the ticket left the SLA-tracked lifecycle.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

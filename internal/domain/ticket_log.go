package domain

import "time"

// TicketLogAction captures what happened in a log entry.
type TicketLogAction string

const (
	LogActionCreated   TicketLogAction = "created"
	LogActionUpdated   TicketLogAction = "updated"
	LogActionEscalated TicketLogAction = "escalated"
	LogActionResolved  TicketLogAction = "resolved"
	LogActionClosed    TicketLogAction = "closed"
)

// TicketLog is an immutable audit trail entry.
type TicketLog struct {
	ID          int64
	TicketID    int64
	Action      TicketLogAction
	Description string
	CreatedBy   *int64
	CreatedAt   time.Time
}

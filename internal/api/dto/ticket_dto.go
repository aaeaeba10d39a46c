package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description" validate:"required"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high critical emergency"`
	Category    string                `json:"category" validate:"omitempty,max=50"`
	Urgency     string                `json:"urgency" validate:"omitempty,max=20"`
	Impact      string                `json:"impact" validate:"omitempty,max=20"`
	CustomerID  *int64                `json:"customer_id" validate:"omitempty,gt=0"`
}

// UpdateTicketRequest is a partial update.
type UpdateTicketRequest struct {
	Title              *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string                `json:"description" validate:"omitempty,min=1"`
	Priority           *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high critical emergency"`
	Category           *string                `json:"category" validate:"omitempty,max=50"`
	Urgency            *string                `json:"urgency" validate:"omitempty,max=20"`
	Impact             *string                `json:"impact" validate:"omitempty,max=20"`
	Status             *domain.TicketStatus   `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	AssignedTo         *int64                 `json:"assigned_to" validate:"omitempty,gt=0"`
	SatisfactionRating *int                   `json:"satisfaction_rating" validate:"omitempty,min=1,max=5"`
	FeedbackComment    *string                `json:"feedback_comment"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	EscalationReason string `json:"escalation_reason" validate:"required"`
}

// TicketResponse mirrors a stored ticket.
type TicketResponse struct {
	ID                 int64                 `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Priority           domain.TicketPriority `json:"priority"`
	Category           string                `json:"category"`
	Urgency            string                `json:"urgency"`
	Impact             string                `json:"impact"`
	Status             domain.TicketStatus   `json:"status"`
	CustomerID         *int64                `json:"customer_id"`
	CustomerTier       domain.CustomerTier   `json:"customer_tier"`
	AssignedTo         *int64                `json:"assigned_to"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          *time.Time            `json:"updated_at"`
	FirstResponseAt    *time.Time            `json:"first_response_at"`
	ResolvedAt         *time.Time            `json:"resolved_at"`
	ClosedAt           *time.Time            `json:"closed_at"`
	FirstResponseDue   time.Time             `json:"first_response_due"`
	ResolutionDue      time.Time             `json:"resolution_due"`
	EscalatedAt        *time.Time            `json:"escalated_at"`
	EscalationReason   *string               `json:"escalation_reason"`
	SatisfactionRating *int                  `json:"satisfaction_rating"`
	FeedbackComment    *string               `json:"feedback_comment"`
}

// EscalateTicketResponse reports the new priority.
type EscalateTicketResponse struct {
	Message     string                `json:"message"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketLogResponse is one audit entry.
type TicketLogResponse struct {
	ID          int64                  `json:"id"`
	Action      domain.TicketLogAction `json:"action"`
	Description string                 `json:"description"`
	CreatedBy   *int64                 `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewTicketResponse maps the domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Priority:           t.Priority,
		Category:           t.Category,
		Urgency:            t.Urgency,
		Impact:             t.Impact,
		Status:             t.Status,
		CustomerID:         t.CustomerID,
		CustomerTier:       t.CustomerTier,
		AssignedTo:         t.AssignedTo,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		FirstResponseAt:    t.FirstResponseAt,
		ResolvedAt:         t.ResolvedAt,
		ClosedAt:           t.ClosedAt,
		FirstResponseDue:   t.FirstResponseDue,
		ResolutionDue:      t.ResolutionDue,
		EscalatedAt:        t.EscalatedAt,
		EscalationReason:   t.EscalationReason,
		SatisfactionRating: t.SatisfactionRating,
		FeedbackComment:    t.FeedbackComment,
	}
}

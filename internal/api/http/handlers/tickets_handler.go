package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// TicketService is the ticket workflow used by the handler.
type TicketService interface {
	CreateTicket(ctx context.Context, input service.TicketCreateInput) (*domain.Ticket, error)
	ListTickets(ctx context.Context, filter service.TicketListFilter) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, input service.TicketUpdateInput) (*domain.Ticket, error)
	EscalateTicket(ctx context.Context, id int64, reason string) (*domain.Ticket, error)
	ListTicketLogs(ctx context.Context, id int64) ([]domain.TicketLog, error)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Urgency:     req.Urgency,
		Impact:      req.Impact,
		CustomerID:  req.CustomerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketListQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), id, service.TicketUpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		Priority:           req.Priority,
		Category:           req.Category,
		Urgency:            req.Urgency,
		Impact:             req.Impact,
		Status:             req.Status,
		AssignedTo:         req.AssignedTo,
		SatisfactionRating: req.SatisfactionRating,
		FeedbackComment:    req.FeedbackComment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// EscalateTicket POST /api/tickets/:id/escalate. The reason is read from
// the JSON body or, failing that, the escalation_reason query parameter.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.EscalateTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.EscalationReason == "" {
		req.EscalationReason = c.Query("escalation_reason")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.EscalateTicket(c.UserContext(), id, req.EscalationReason)
	if err != nil {
		return err
	}
	return c.JSON(dto.EscalateTicketResponse{
		Message:     fmt.Sprintf("Ticket escalated to %s", ticket.Priority),
		NewPriority: ticket.Priority,
	})
}

// ListTicketLogs GET /api/tickets/:id/logs.
func (h *TicketsHandler) ListTicketLogs(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	logs, err := h.service.ListTicketLogs(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.TicketLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.TicketLogResponse{
			ID:          l.ID,
			Action:      l.Action,
			Description: l.Description,
			CreatedBy:   l.CreatedBy,
			CreatedAt:   l.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketListQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	var filter service.TicketListFilter
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": v})
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		if !priority.Valid() {
			return filter, apperrors.NewValidationError("invalid priority", map[string]any{"priority": v})
		}
		filter.Priority = &priority
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("assigned_to"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid assigned_to", map[string]any{"assigned_to": v})
		}
		filter.AssignedTo = &id
	}
	if v := c.Query("sla_breach"); v != "" {
		breach, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid sla_breach", map[string]any{"sla_breach": v})
		}
		filter.SLABreach = &breach
	}
	filter.Offset = parseIntQuery(c, "skip", 0)
	filter.Limit = parseIntQuery(c, "limit", 50)
	return filter, nil
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+param, map[string]any{param: c.Params(param)})
	}
	return id, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultVal
}

package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

const defaultListLimit = 50

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ticketColumns = []string{
	"t.id", "t.title", "t.description", "t.priority", "t.category", "t.urgency", "t.impact", "t.status",
	"t.customer_id", "t.assigned_to", "COALESCE(c.tier, 'standard')",
	"t.created_at", "t.updated_at", "t.first_response_at", "t.resolved_at", "t.closed_at",
	"t.first_response_due", "t.resolution_due",
	"t.escalated_at", "t.escalation_reason", "t.satisfaction_rating", "t.feedback_comment",
}

// TicketFilter captures list parameters. BreachedAt selects tickets with at
// least one missed milestone as of that instant.
type TicketFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Category   *string
	AssignedTo *int64
	BreachedAt *time.Time
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// QueryOpenCandidates returns non-closed tickets with at least one
	// milestone still pending.
	QueryOpenCandidates(ctx context.Context) ([]domain.Ticket, error)
	// QueryByCreatedRange returns tickets created in [start, end], optionally
	// restricted to one category.
	QueryByCreatedRange(ctx context.Context, start, end time.Time, category *string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Create inserts the ticket together with its due-dates.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Insert("tickets").
		Columns("title", "description", "priority", "category", "urgency", "impact", "status",
			"customer_id", "assigned_to", "created_at", "first_response_due", "resolution_due").
		Values(ticket.Title, ticket.Description, ticket.Priority, ticket.Category, ticket.Urgency, ticket.Impact,
			ticket.Status, ticket.CustomerID, ticket.AssignedTo, ticket.CreatedAt,
			ticket.FirstResponseDue, ticket.ResolutionDue).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&ticket.ID)
}

// Update persists mutable fields. Due-dates are never rewritten.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Update("tickets").
		SetMap(map[string]any{
			"title":               ticket.Title,
			"description":         ticket.Description,
			"priority":            ticket.Priority,
			"category":            ticket.Category,
			"urgency":             ticket.Urgency,
			"impact":              ticket.Impact,
			"status":              ticket.Status,
			"assigned_to":         ticket.AssignedTo,
			"updated_at":          ticket.UpdatedAt,
			"first_response_at":   ticket.FirstResponseAt,
			"resolved_at":         ticket.ResolvedAt,
			"closed_at":           ticket.ClosedAt,
			"escalated_at":        ticket.EscalatedAt,
			"escalation_reason":   ticket.EscalationReason,
			"satisfaction_rating": ticket.SatisfactionRating,
			"feedback_comment":    ticket.FeedbackComment,
		}).
		Where(sq.Eq{"id": ticket.ID}).
		ToSql()
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	tickets, err := r.query(ctx, ticketSelect().Where(sq.Eq{"t.id": id}))
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	return r.query(ctx, filteredSelect(filter))
}

func (r *ticketRepository) QueryOpenCandidates(ctx context.Context) ([]domain.Ticket, error) {
	return r.query(ctx, openCandidatesSelect())
}

func (r *ticketRepository) QueryByCreatedRange(ctx context.Context, start, end time.Time, category *string) ([]domain.Ticket, error) {
	return r.query(ctx, createdRangeSelect(start, end, category))
}

func (r *ticketRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]domain.Ticket, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func ticketSelect() sq.SelectBuilder {
	return psql.Select(ticketColumns...).
		From("tickets t").
		LeftJoin("customers c ON c.id = t.customer_id")
}

func filteredSelect(filter TicketFilter) sq.SelectBuilder {
	builder := ticketSelect()
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"t.status": *filter.Status})
	}
	if filter.Priority != nil {
		builder = builder.Where(sq.Eq{"t.priority": *filter.Priority})
	}
	if filter.Category != nil {
		builder = builder.Where(sq.Eq{"t.category": *filter.Category})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"t.assigned_to": *filter.AssignedTo})
	}
	if filter.BreachedAt != nil {
		builder = builder.Where(breachedAt(*filter.BreachedAt))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return builder.OrderBy("t.id ASC").Limit(uint64(limit)).Offset(uint64(offset))
}

// breachedAt mirrors sla.ScanBreaches: closed tickets are excluded and each
// milestone is checked on its own.
func breachedAt(now time.Time) sq.Sqlizer {
	return sq.And{
		sq.NotEq{"t.status": domain.TicketStatusClosed},
		sq.Or{
			sq.And{sq.Eq{"t.first_response_at": nil}, sq.Lt{"t.first_response_due": now}},
			sq.And{sq.Eq{"t.resolved_at": nil}, sq.Lt{"t.resolution_due": now}},
		},
	}
}

func openCandidatesSelect() sq.SelectBuilder {
	return ticketSelect().
		Where(sq.NotEq{"t.status": domain.TicketStatusClosed}).
		Where(sq.Or{sq.Eq{"t.first_response_at": nil}, sq.Eq{"t.resolved_at": nil}}).
		OrderBy("t.id ASC")
}

func createdRangeSelect(start, end time.Time, category *string) sq.SelectBuilder {
	builder := ticketSelect().
		Where(sq.GtOrEq{"t.created_at": start}).
		Where(sq.LtOrEq{"t.created_at": end})
	if category != nil && *category != "" {
		builder = builder.Where(sq.Eq{"t.category": *category})
	}
	return builder.OrderBy("t.created_at ASC", "t.id ASC")
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Urgency,
			&ticket.Impact,
			&ticket.Status,
			&ticket.CustomerID,
			&ticket.AssignedTo,
			&ticket.CustomerTier,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.FirstResponseAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
			&ticket.FirstResponseDue,
			&ticket.ResolutionDue,
			&ticket.EscalatedAt,
			&ticket.EscalationReason,
			&ticket.SatisfactionRating,
			&ticket.FeedbackComment,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

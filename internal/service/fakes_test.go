package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// 2024-07-01 is a Monday.
var monday9 = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testEngine(t *testing.T, targets ...domain.SLATarget) *sla.Engine {
	t.Helper()
	cal, err := sla.NewCalendar(sla.DefaultWorkWeek())
	require.NoError(t, err)
	fallback := sla.DefaultHours
	table, err := sla.NewTargetTable(targets, &fallback)
	require.NoError(t, err)
	return sla.NewEngine(cal, table)
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket
	creates []domain.Ticket
	filters []repository.TicketFilter
	err     error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]domain.Ticket{}}
}

func (f *fakeTicketRepo) put(t domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[t.ID] = t
	if t.ID > f.nextID {
		f.nextID = t.ID
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	ticket.ID = f.nextID
	f.tickets[ticket.ID] = *ticket
	f.creates = append(f.creates, *ticket)
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTicketRepo) sorted() []domain.Ticket {
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, t := range f.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	out := []domain.Ticket{}
	for _, t := range f.sorted() {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.BreachedAt != nil {
			now := *filter.BreachedAt
			if !sla.FirstResponseBreached(&t, now) && !sla.ResolutionBreached(&t, now) {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTicketRepo) QueryOpenCandidates(_ context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Ticket{}
	for _, t := range f.sorted() {
		if !t.IsClosed() && (t.FirstResponseAt == nil || t.ResolvedAt == nil) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) QueryByCreatedRange(_ context.Context, start, end time.Time, category *string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Ticket{}
	for _, t := range f.sorted() {
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		if category != nil && *category != "" && t.Category != *category {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []domain.TicketLog
}

func (f *fakeLogRepo) Create(_ context.Context, entry *domain.TicketLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.TicketLog{}
	for _, e := range f.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCustomers map[int64]domain.CustomerTier

func (f fakeCustomers) CustomerTier(_ context.Context, id int64) (domain.CustomerTier, bool, error) {
	tier, ok := f[id]
	return tier, ok, nil
}

type fakeTargetStore struct {
	rows     []domain.SLATarget
	upserted []domain.SLATarget
}

func (f *fakeTargetStore) List(context.Context) ([]domain.SLATarget, error) {
	return f.rows, nil
}

func (f *fakeTargetStore) Upsert(_ context.Context, targets []domain.SLATarget) error {
	f.upserted = append(f.upserted, targets...)
	return nil
}

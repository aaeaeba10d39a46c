package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

var created = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeTickets struct {
	tickets    map[int64]*domain.Ticket
	lastFilter service.TicketListFilter
	lastCreate service.TicketCreateInput
}

func (f *fakeTickets) CreateTicket(_ context.Context, in service.TicketCreateInput) (*domain.Ticket, error) {
	f.lastCreate = in
	return &domain.Ticket{
		ID:               7,
		Title:            in.Title,
		Description:      in.Description,
		Priority:         in.Priority,
		Status:           domain.TicketStatusOpen,
		CreatedAt:        created,
		FirstResponseDue: created.Add(4 * time.Hour),
		ResolutionDue:    created.Add(24 * time.Hour),
	}, nil
}

func (f *fakeTickets) ListTickets(_ context.Context, filter service.TicketListFilter) ([]domain.Ticket, error) {
	f.lastFilter = filter
	var out []domain.Ticket
	for _, t := range f.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTickets) GetTicket(_ context.Context, id int64) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return t, nil
}

func (f *fakeTickets) UpdateTicket(ctx context.Context, id int64, in service.TicketUpdateInput) (*domain.Ticket, error) {
	t, err := f.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	return t, nil
}

func (f *fakeTickets) EscalateTicket(ctx context.Context, id int64, reason string) (*domain.Ticket, error) {
	t, err := f.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Priority = t.Priority.Escalated()
	t.EscalationReason = &reason
	return t, nil
}

func (f *fakeTickets) ListTicketLogs(_ context.Context, id int64) ([]domain.TicketLog, error) {
	return []domain.TicketLog{{ID: 1, TicketID: id, Action: domain.LogActionCreated, Description: "Ticket created", CreatedAt: created}}, nil
}

type fakeCustomers struct{}

func (fakeCustomers) CreateCustomer(_ context.Context, in service.CustomerCreateInput) (*domain.Customer, error) {
	return &domain.Customer{ID: 3, CompanyName: in.CompanyName, ContactName: in.ContactName, Email: in.Email, Tier: domain.CustomerTierStandard}, nil
}

func (fakeCustomers) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
}

type fakeSLA struct {
	report     domain.SLAReport
	reportErr  error
	breaches   []domain.BreachRecord
	start, end time.Time
	category   *string
}

func (f *fakeSLA) ScanBreaches(context.Context) ([]domain.BreachRecord, error) {
	return f.breaches, nil
}

func (f *fakeSLA) BuildReport(_ context.Context, start, end time.Time, category *string) (domain.SLAReport, error) {
	f.start, f.end, f.category = start, end, category
	if f.reportErr != nil {
		return domain.SLAReport{}, f.reportErr
	}
	r := f.report
	r.Start, r.End, r.Category = start, end, category
	return r, nil
}

func (f *fakeSLA) Targets() ([]domain.SLATarget, *sla.Hours) {
	return []domain.SLATarget{{
		CustomerTier:       domain.CustomerTierEnterprise,
		Priority:           domain.TicketPriorityCritical,
		FirstResponseHours: 0.5,
		ResolutionHours:    4,
	}}, &sla.Hours{FirstResponse: 4, Resolution: 24}
}

type testServer struct {
	app     *fiber.App
	tickets *fakeTickets
	sla     *fakeSLA
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tickets := &fakeTickets{tickets: map[int64]*domain.Ticket{
		1: {ID: 1, Title: "Printer", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, CreatedAt: created},
	}}
	slaSvc := &fakeSLA{}
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("helpdesk-sla", "test", nil, metrics),
		Tickets:   handlers.NewTicketsHandler(tickets),
		Customers: handlers.NewCustomersHandler(fakeCustomers{}),
		SLA:       handlers.NewSLAHandler(slaSvc),
	})
	return &testServer{app: app, tickets: tickets, sla: slaSvc}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	return errBody["code"].(string)
}

func TestCreateTicket(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/tickets", `{"title":"VPN down","description":"cannot connect","priority":"high","customer_id":5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "2024-01-01T13:00:00Z", data["first_response_due"])
	require.NotNil(t, s.tickets.lastCreate.CustomerID)
	assert.Equal(t, int64(5), *s.tickets.lastCreate.CustomerID)
}

func TestCreateTicketValidation(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/tickets", `{"description":"no title","priority":"urgent"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "required", details["title"])
	assert.Contains(t, details["priority"], "oneof")

	resp, body = s.do(t, http.MethodPost, "/api/tickets", `{"title":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestListTicketsParsesFilters(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/tickets?status=open&priority=high&category=network&assigned_to=4&sla_breach=true&skip=10&limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	f := s.tickets.lastFilter
	require.NotNil(t, f.Status)
	assert.Equal(t, domain.TicketStatusOpen, *f.Status)
	require.NotNil(t, f.Priority)
	assert.Equal(t, domain.TicketPriorityHigh, *f.Priority)
	assert.Equal(t, "network", *f.Category)
	assert.Equal(t, int64(4), *f.AssignedTo)
	assert.True(t, *f.SLABreach)
	assert.Equal(t, 10, f.Offset)
	assert.Equal(t, 5, f.Limit)
}

func TestListTicketsRejectsBadFilters(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"status=pending", "priority=urgent", "assigned_to=bob", "sla_breach=maybe"} {
		resp, body := s.do(t, http.MethodGet, "/api/tickets?"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body), q)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/tickets/99", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = s.do(t, http.MethodGet, "/api/tickets/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestEscalateTicket(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/tickets/1/escalate", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	resp, body = s.do(t, http.MethodPost, "/api/tickets/1/escalate?escalation_reason=VIP", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ticket escalated to critical", body["message"])
	assert.Equal(t, "critical", body["new_priority"])
}

func TestTicketLogs(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/tickets/1/logs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := body["data"].([]any)
	require.Len(t, logs, 1)
	assert.Equal(t, "created", logs[0].(map[string]any)["action"])
}

func TestCustomers(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/customers", `{"company_name":"Acme","contact_name":"Sam","email":"sam@acme.test"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "standard", body["data"].(map[string]any)["tier"])

	resp, body = s.do(t, http.MethodPost, "/api/customers", `{"company_name":"Acme","contact_name":"Sam","email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email", body["error"].(map[string]any)["details"].(map[string]any)["email"])

	resp, _ = s.do(t, http.MethodGet, "/api/customers/3", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSLAReport(t *testing.T) {
	s := newTestServer(t)
	s.sla.report = domain.SLAReport{
		TotalTickets:  3,
		FirstResponse: domain.MilestoneStats{TicketsMet: 2, CompliantRate: 200.0 / 3, WithMilestone: 3, AvgHours: 1.23456, AvgBusinessHrs: 1},
		Resolution:    domain.MilestoneStats{TicketsMet: 1, CompliantRate: 100.0 / 3, WithMilestone: 1, AvgHours: 10, AvgBusinessHrs: 8},
	}

	resp, body := s.do(t, http.MethodGet, "/api/reports/sla?start_date=2024-01-01&end_date=2024-01-31T23:59:59Z&category=network", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.sla.start)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), s.sla.end)
	require.NotNil(t, s.sla.category)
	assert.Equal(t, "network", *s.sla.category)

	assert.Nil(t, body["data"])
	assert.Equal(t, float64(3), body["total_tickets"])
	fr := body["first_response_sla"].(map[string]any)
	assert.Equal(t, 66.67, fr["compliance_rate"])
	assert.Equal(t, 1.23, fr["avg_response_time_hours"])
	res := body["resolution_sla"].(map[string]any)
	assert.Equal(t, 33.33, res["compliance_rate"])
	assert.Equal(t, float64(8), res["avg_resolution_business_hours"])
}

func TestSLAReportErrors(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/reports/sla?end_date=2024-01-31", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	resp, _ = s.do(t, http.MethodGet, "/api/reports/sla?start_date=yesterday&end_date=2024-01-31", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s.sla.reportErr = apperrors.NewInvalidArgument(sla.ErrInvalidArgument)
	resp, body = s.do(t, http.MethodGet, "/api/reports/sla?start_date=2024-02-01&end_date=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	s.sla.reportErr = nil
	resp, _ = s.do(t, http.MethodGet, "/api/reports/sla?start_date=2024-01-01&end_date=2024-01-31&format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSLAReportXLSX(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/reports/sla?start_date=2024-01-01&end_date=2024-01-31&format=xlsx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sla_report_20240101_20240131.xlsx")
}

func TestSLABreachesAndTargets(t *testing.T) {
	s := newTestServer(t)
	s.sla.breaches = []domain.BreachRecord{{
		TicketID:       1,
		BreachType:     domain.BreachTypeFirstResponse,
		BreachDuration: 90 * time.Minute,
		Priority:       domain.TicketPriorityHigh,
		CustomerTier:   domain.CustomerTierPremium,
		DueAt:          created,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/sla/breaches", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var breaches []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&breaches))
	require.Len(t, breaches, 1)
	assert.Equal(t, "first_response", breaches[0]["breach_type"])
	assert.Equal(t, "1h30m0s", breaches[0]["breach_duration"])
	assert.Equal(t, 1.5, breaches[0]["breach_duration_hours"])

	resp, body := s.do(t, http.MethodGet, "/api/sla/targets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Len(t, data["targets"], 1)
	assert.Equal(t, float64(24), data["default"].(map[string]any)["resolution_hours"])
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = s.do(t, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	resp, body = s.do(t, http.MethodGet, "/api/nowhere", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = s.do(t, http.MethodGet, "/health/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["data"].(map[string]any)["requests"])
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return assert.AnError }

func TestReadyReportsFailingDependency(t *testing.T) {
	app := fiber.New()
	h := handlers.NewHealthHandler("helpdesk-sla", "test", map[string]handlers.Pinger{"postgres": failingPinger{}}, nil)
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

package dto

import (
	"math"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// SLAReportResponse is the wire shape of a compliance report. Rates and
// averages are rounded to two decimals here and nowhere else.
type SLAReportResponse struct {
	Period           ReportPeriod        `json:"period"`
	Category         *string             `json:"category,omitempty"`
	TotalTickets     int                 `json:"total_tickets"`
	FirstResponseSLA FirstResponseReport `json:"first_response_sla"`
	ResolutionSLA    ResolutionReport    `json:"resolution_sla"`
}

// ReportPeriod echoes the requested range.
type ReportPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type FirstResponseReport struct {
	ComplianceRate           float64 `json:"compliance_rate"`
	TicketsMet               int     `json:"tickets_met"`
	AvgResponseTimeHours     float64 `json:"avg_response_time_hours"`
	AvgResponseBusinessHours float64 `json:"avg_response_business_hours"`
}

type ResolutionReport struct {
	ComplianceRate             float64 `json:"compliance_rate"`
	TicketsMet                 int     `json:"tickets_met"`
	AvgResolutionTimeHours     float64 `json:"avg_resolution_time_hours"`
	AvgResolutionBusinessHours float64 `json:"avg_resolution_business_hours"`
}

// NewSLAReportResponse rounds and maps the report.
func NewSLAReportResponse(r domain.SLAReport) SLAReportResponse {
	return SLAReportResponse{
		Period:       ReportPeriod{StartDate: r.Start, EndDate: r.End},
		Category:     r.Category,
		TotalTickets: r.TotalTickets,
		FirstResponseSLA: FirstResponseReport{
			ComplianceRate:           round2(r.FirstResponse.CompliantRate),
			TicketsMet:               r.FirstResponse.TicketsMet,
			AvgResponseTimeHours:     round2(r.FirstResponse.AvgHours),
			AvgResponseBusinessHours: round2(r.FirstResponse.AvgBusinessHrs),
		},
		ResolutionSLA: ResolutionReport{
			ComplianceRate:             round2(r.Resolution.CompliantRate),
			TicketsMet:                 r.Resolution.TicketsMet,
			AvgResolutionTimeHours:     round2(r.Resolution.AvgHours),
			AvgResolutionBusinessHours: round2(r.Resolution.AvgBusinessHrs),
		},
	}
}

// BreachRecordResponse is one breach on the wire. BreachDuration is a Go
// duration string such as "1h0m0s".
type BreachRecordResponse struct {
	TicketID            int64                 `json:"ticket_id"`
	BreachType          domain.BreachType     `json:"breach_type"`
	BreachDuration      string                `json:"breach_duration"`
	BreachDurationHours float64               `json:"breach_duration_hours"`
	Priority            domain.TicketPriority `json:"priority"`
	CustomerTier        domain.CustomerTier   `json:"customer_tier"`
	DueAt               time.Time             `json:"due_at"`
}

// NewBreachRecordResponses maps breach records, keeping order.
func NewBreachRecordResponses(records []domain.BreachRecord) []BreachRecordResponse {
	out := make([]BreachRecordResponse, 0, len(records))
	for _, b := range records {
		out = append(out, BreachRecordResponse{
			TicketID:            b.TicketID,
			BreachType:          b.BreachType,
			BreachDuration:      b.BreachDuration.String(),
			BreachDurationHours: round2(b.BreachDuration.Hours()),
			Priority:            b.Priority,
			CustomerTier:        b.CustomerTier,
			DueAt:               b.DueAt,
		})
	}
	return out
}

// SLATargetsResponse lists the effective target table.
type SLATargetsResponse struct {
	Targets []SLATargetResponse `json:"targets"`
	Default *SLATargetHours     `json:"default"`
}

type SLATargetResponse struct {
	CustomerTier       domain.CustomerTier   `json:"customer_tier"`
	Priority           domain.TicketPriority `json:"priority"`
	FirstResponseHours float64               `json:"first_response_hours"`
	ResolutionHours    float64               `json:"resolution_hours"`
}

type SLATargetHours struct {
	FirstResponseHours float64 `json:"first_response_hours"`
	ResolutionHours    float64 `json:"resolution_hours"`
}

// NewSLATargetsResponse maps the table and optional fallback.
func NewSLATargetsResponse(targets []domain.SLATarget, fallback *sla.Hours) SLATargetsResponse {
	resp := SLATargetsResponse{Targets: make([]SLATargetResponse, 0, len(targets))}
	for _, t := range targets {
		resp.Targets = append(resp.Targets, SLATargetResponse(t))
	}
	if fallback != nil {
		resp.Default = &SLATargetHours{FirstResponseHours: fallback.FirstResponse, ResolutionHours: fallback.Resolution}
	}
	return resp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

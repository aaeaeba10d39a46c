package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// ValidateRange checks a report period: both ends set and end not before
// start.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: report range needs both start and end", ErrInvalidArgument)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: report end %s is before start %s", ErrInvalidArgument,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// BuildReport aggregates SLA compliance over tickets created within
// [start, end], optionally restricted to one category (exact match). The
// input slice is not modified.
func (e *Engine) BuildReport(tickets []domain.Ticket, start, end time.Time, category *string) (domain.SLAReport, error) {
	if err := ValidateRange(start, end); err != nil {
		return domain.SLAReport{}, err
	}

	report := domain.SLAReport{Start: start, End: end}
	if category != nil && *category != "" {
		c := *category
		report.Category = &c
	}

	var firstResponse, resolution milestoneAccumulator
	for i := range tickets {
		t := &tickets[i]
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		if report.Category != nil && t.Category != *report.Category {
			continue
		}
		report.TotalTickets++
		firstResponse.add(e.calendar, t.CreatedAt, t.FirstResponseAt, t.FirstResponseDue)
		resolution.add(e.calendar, t.CreatedAt, t.ResolvedAt, t.ResolutionDue)
	}

	report.FirstResponse = firstResponse.stats(report.TotalTickets)
	report.Resolution = resolution.stats(report.TotalTickets)
	return report, nil
}

type milestoneAccumulator struct {
	met           int
	reached       int
	elapsed       time.Duration
	businessHours time.Duration
}

func (a *milestoneAccumulator) add(cal *Calendar, created time.Time, at *time.Time, due time.Time) {
	if at == nil {
		return
	}
	a.reached++
	a.elapsed += at.Sub(created)
	a.businessHours += cal.BusinessHoursBetween(created, *at)
	if !due.IsZero() && !at.After(due) {
		a.met++
	}
}

func (a *milestoneAccumulator) stats(total int) domain.MilestoneStats {
	s := domain.MilestoneStats{TicketsMet: a.met, WithMilestone: a.reached}
	if total > 0 {
		s.CompliantRate = float64(a.met) / float64(total) * 100
	}
	if a.reached > 0 {
		s.AvgHours = a.elapsed.Hours() / float64(a.reached)
		s.AvgBusinessHrs = a.businessHours.Hours() / float64(a.reached)
	}
	return s
}

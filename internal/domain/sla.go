package domain

import "time"

// SLATarget is one row of the (tier, priority) target table.
type SLATarget struct {
	CustomerTier       CustomerTier   `yaml:"customer_tier"`
	Priority           TicketPriority `yaml:"priority"`
	FirstResponseHours float64        `yaml:"first_response_hours"`
	ResolutionHours    float64        `yaml:"resolution_hours"`
}

// BreachType names the SLA milestone that was missed.
type BreachType string

const (
	BreachTypeFirstResponse BreachType = "first_response"
	BreachTypeResolution    BreachType = "resolution"
)

// BreachRecord describes one missed milestone of one ticket.
type BreachRecord struct {
	TicketID       int64
	BreachType     BreachType
	BreachDuration time.Duration
	Priority       TicketPriority
	CustomerTier   CustomerTier
	DueAt          time.Time
}

// MilestoneStats aggregates compliance for a single SLA milestone.
type MilestoneStats struct {
	TicketsMet     int
	CompliantRate  float64
	WithMilestone  int
	AvgHours       float64
	AvgBusinessHrs float64
}

// SLAReport is a read-only compliance snapshot for a period. Values keep
// full precision; rounding happens at serialization.
type SLAReport struct {
	Start         time.Time
	End           time.Time
	Category      *string
	TotalTickets  int
	FirstResponse MilestoneStats
	Resolution    MilestoneStats
}

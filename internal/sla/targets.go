package sla

import (
	"fmt"
	"math"
	"sort"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// Hours is the pair of SLA budgets, in business hours.
type Hours struct {
	FirstResponse float64
	Resolution    float64
}

// DefaultHours is the documented fallback applied when no (tier, priority)
// entry matches.
var DefaultHours = Hours{FirstResponse: 4, Resolution: 24}

// Lookup resolves SLA budgets for a customer tier and priority.
type Lookup interface {
	Resolve(tier domain.CustomerTier, priority domain.TicketPriority) (Hours, error)
}

type targetKey struct {
	tier     domain.CustomerTier
	priority domain.TicketPriority
}

// TargetTable is an immutable in-memory Lookup.
type TargetTable struct {
	entries  map[targetKey]Hours
	fallback *Hours
}

// NewTargetTable indexes targets. A nil fallback makes unmatched lookups
// fail with ErrConfigurationMissing. Later duplicates override earlier ones.
func NewTargetTable(targets []domain.SLATarget, fallback *Hours) (*TargetTable, error) {
	table := &TargetTable{entries: make(map[targetKey]Hours, len(targets))}
	for _, t := range targets {
		h := Hours{FirstResponse: t.FirstResponseHours, Resolution: t.ResolutionHours}
		if err := h.validate(); err != nil {
			return nil, fmt.Errorf("target %s/%s: %w", t.CustomerTier, t.Priority, err)
		}
		table.entries[targetKey{tier: t.CustomerTier, priority: t.Priority}] = h
	}
	if fallback != nil {
		if err := fallback.validate(); err != nil {
			return nil, fmt.Errorf("default target: %w", err)
		}
		fb := *fallback
		table.fallback = &fb
	}
	return table, nil
}

// Resolve returns the matching entry, else the fallback.
func (t *TargetTable) Resolve(tier domain.CustomerTier, priority domain.TicketPriority) (Hours, error) {
	if h, ok := t.entries[targetKey{tier: tier, priority: priority}]; ok {
		return h, nil
	}
	if t.fallback != nil {
		return *t.fallback, nil
	}
	return Hours{}, fmt.Errorf("%w: no target for tier %q priority %q", ErrConfigurationMissing, tier, priority)
}

// Fallback returns the default pair, if configured.
func (t *TargetTable) Fallback() (Hours, bool) {
	if t.fallback == nil {
		return Hours{}, false
	}
	return *t.fallback, true
}

// Targets lists the configured entries ordered by tier then priority ladder.
func (t *TargetTable) Targets() []domain.SLATarget {
	out := make([]domain.SLATarget, 0, len(t.entries))
	for k, h := range t.entries {
		out = append(out, domain.SLATarget{
			CustomerTier:       k.tier,
			Priority:           k.priority,
			FirstResponseHours: h.FirstResponse,
			ResolutionHours:    h.Resolution,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerTier != out[j].CustomerTier {
			return out[i].CustomerTier < out[j].CustomerTier
		}
		ri, rj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}

func (h Hours) validate() error {
	for _, v := range []float64{h.FirstResponse, h.Resolution} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: target hours must be finite and non-negative", ErrInvalidArgument)
		}
	}
	return nil
}

func priorityRank(p domain.TicketPriority) int {
	for i, candidate := range domain.PriorityLadder {
		if candidate == p {
			return i
		}
	}
	return len(domain.PriorityLadder)
}

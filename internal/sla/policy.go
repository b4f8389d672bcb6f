package sla

import (
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Policy maps a priority tier to its allowed hours. Values are fixed at
// process start; a task copies its budget from the policy exactly once, at
// creation.
type Policy struct {
	hours map[domain.TaskPriority]float64

	// InclusiveThreshold makes elapsed == budget count as a breach. The
	// default comparison is strictly greater-than.
	InclusiveThreshold bool
}

// PolicyHours carries per-priority budgets for constructing a Policy.
type PolicyHours struct {
	Critical float64
	High     float64
	Medium   float64
	Low      float64
}

// DefaultHours returns the stock budgets.
func DefaultHours() PolicyHours {
	return PolicyHours{Critical: 4, High: 24, Medium: 72, Low: 168}
}

// NewPolicy builds a policy from the given budgets, substituting defaults for
// non-positive values.
func NewPolicy(hours PolicyHours, inclusive bool) *Policy {
	defaults := DefaultHours()
	if hours.Critical <= 0 {
		hours.Critical = defaults.Critical
	}
	if hours.High <= 0 {
		hours.High = defaults.High
	}
	if hours.Medium <= 0 {
		hours.Medium = defaults.Medium
	}
	if hours.Low <= 0 {
		hours.Low = defaults.Low
	}
	return &Policy{
		hours: map[domain.TaskPriority]float64{
			domain.TaskPriorityCritical: hours.Critical,
			domain.TaskPriorityHigh:     hours.High,
			domain.TaskPriorityMedium:   hours.Medium,
			domain.TaskPriorityLow:      hours.Low,
		},
		InclusiveThreshold: inclusive,
	}
}

// Hours returns the budget for a priority. An unknown priority is a
// programming error, never expected from validated input.
func (p *Policy) Hours(priority domain.TaskPriority) (float64, error) {
	hours, ok := p.hours[priority]
	if !ok {
		return 0, apperrors.NewInvariantViolation("no SLA budget for priority", map[string]any{
			"priority": string(priority),
		})
	}
	return hours, nil
}

// Breached applies the configured threshold comparison.
func (p *Policy) Breached(elapsedHours, slaHours float64) bool {
	if p.InclusiveThreshold {
		return elapsedHours >= slaHours
	}
	return elapsedHours > slaHours
}

package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func TestPolicyHours(t *testing.T) {
	policy := NewPolicy(DefaultHours(), false)

	tests := []struct {
		priority domain.TaskPriority
		hours    float64
	}{
		{domain.TaskPriorityCritical, 4},
		{domain.TaskPriorityHigh, 24},
		{domain.TaskPriorityMedium, 72},
		{domain.TaskPriorityLow, 168},
	}
	for _, tc := range tests {
		hours, err := policy.Hours(tc.priority)
		require.NoError(t, err)
		assert.Equal(t, tc.hours, hours)
	}
}

func TestPolicyHoursUnknownPriority(t *testing.T) {
	policy := NewPolicy(DefaultHours(), false)
	_, err := policy.Hours(domain.TaskPriority("Severe"))
	require.Error(t, err)
	assert.Equal(t, "INVARIANT_VIOLATION", apperrors.ToDomainError(err).Code)
}

func TestPolicyOverrides(t *testing.T) {
	policy := NewPolicy(PolicyHours{Critical: 2, High: 8}, false)

	hours, err := policy.Hours(domain.TaskPriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, 2.0, hours)

	// Unset budgets fall back to the defaults.
	hours, err = policy.Hours(domain.TaskPriorityMedium)
	require.NoError(t, err)
	assert.Equal(t, 72.0, hours)
}

func TestBreached(t *testing.T) {
	strict := NewPolicy(DefaultHours(), false)
	assert.False(t, strict.Breached(23.9, 24))
	assert.False(t, strict.Breached(24, 24))
	assert.True(t, strict.Breached(24.01, 24))

	inclusive := NewPolicy(DefaultHours(), true)
	assert.False(t, inclusive.Breached(23.9, 24))
	assert.True(t, inclusive.Breached(24, 24))
	assert.True(t, inclusive.Breached(24.01, 24))
}

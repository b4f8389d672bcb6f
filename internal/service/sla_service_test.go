package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
)

func newTestSLA(t *testing.T, inclusive bool) (*SLAService, *TaskService) {
	t.Helper()
	store := repository.NewMemoryStore()
	policy := sla.NewPolicy(sla.DefaultHours(), inclusive)
	tasks := NewTaskService(TaskDependencies{
		TaskRepo:     store.Tasks(),
		ActivityRepo: store.ActivityLog(),
		Policy:       policy,
	})
	return NewSLAService(store.Tasks(), policy), tasks
}

// createTaskAt backdates task creation by fixing the service clock.
func createTaskAt(t *testing.T, tasks *TaskService, createdAt time.Time, priority domain.TaskPriority) *domain.Task {
	t.Helper()
	tasks.Now = func() time.Time { return createdAt }
	task, err := tasks.CreateTask(context.Background(), "complaint-1", domain.DepartmentRoads, "pothole", priority)
	require.NoError(t, err)
	tasks.Now = time.Now
	return task
}

func TestComputeBreaches(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("pending task past its budget is breached", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		task := createTaskAt(t, tasks, now.Add(-30*time.Hour), domain.TaskPriorityHigh)
		slaSvc.Now = func() time.Time { return now }

		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)

		record := breaches[0]
		assert.Equal(t, task.ID, record.TaskID)
		assert.Equal(t, 24.0, record.SLAHours)
		assert.InDelta(t, 30.0, record.ElapsedHours, 0.001)
		assert.True(t, record.Breached)
	})

	t.Run("task within budget is reported but not breached", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		createTaskAt(t, tasks, now.Add(-10*time.Hour), domain.TaskPriorityHigh)
		slaSvc.Now = func() time.Time { return now }

		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.False(t, breaches[0].Breached)
		assert.InDelta(t, 10.0, breaches[0].ElapsedHours, 0.001)
	})

	t.Run("terminal tasks are excluded", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		overdue := createTaskAt(t, tasks, now.Add(-48*time.Hour), domain.TaskPriorityHigh)
		createTaskAt(t, tasks, now.Add(-48*time.Hour), domain.TaskPriorityCritical)

		_, err := tasks.UpdateStatus(ctx, overdue.ID, domain.TaskStatusInProgress, "agent", "")
		require.NoError(t, err)
		_, err = tasks.UpdateStatus(ctx, overdue.ID, domain.TaskStatusResolved, "agent", "done")
		require.NoError(t, err)

		slaSvc.Now = func() time.Time { return now }
		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.NotEqual(t, overdue.ID, breaches[0].TaskID)
	})

	t.Run("in-progress tasks still count against the budget", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		task := createTaskAt(t, tasks, now.Add(-5*time.Hour), domain.TaskPriorityCritical)
		_, err := tasks.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress, "agent", "")
		require.NoError(t, err)

		slaSvc.Now = func() time.Time { return now }
		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.True(t, breaches[0].Breached)
	})

	t.Run("budget stays frozen at creation-time policy", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		task := createTaskAt(t, tasks, now.Add(-30*time.Hour), domain.TaskPriorityHigh)
		require.Equal(t, 24.0, task.SLAHours)

		// Swapping the read-side policy must not change the stored budget.
		slaSvc.policy = sla.NewPolicy(sla.PolicyHours{Critical: 1, High: 100, Medium: 1, Low: 1}, false)
		slaSvc.Now = func() time.Time { return now }

		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.Equal(t, 24.0, breaches[0].SLAHours)
		assert.True(t, breaches[0].Breached)
	})

	t.Run("repeated computations are read-only and consistent", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		createTaskAt(t, tasks, now.Add(-30*time.Hour), domain.TaskPriorityHigh)
		slaSvc.Now = func() time.Time { return now }

		first, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		second, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestBreachThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("exactly at the budget is not a breach by default", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, false)
		createTaskAt(t, tasks, now.Add(-24*time.Hour), domain.TaskPriorityHigh)
		slaSvc.Now = func() time.Time { return now }

		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.False(t, breaches[0].Breached)
	})

	t.Run("inclusive threshold counts the boundary", func(t *testing.T) {
		slaSvc, tasks := newTestSLA(t, true)
		createTaskAt(t, tasks, now.Add(-24*time.Hour), domain.TaskPriorityHigh)
		slaSvc.Now = func() time.Time { return now }

		breaches, err := slaSvc.ComputeBreaches(ctx)
		require.NoError(t, err)
		require.Len(t, breaches, 1)
		assert.True(t, breaches[0].Breached)
	})
}

func TestActiveBreaches(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	slaSvc, tasks := newTestSLA(t, false)
	overdue := createTaskAt(t, tasks, now.Add(-30*time.Hour), domain.TaskPriorityHigh)
	createTaskAt(t, tasks, now.Add(-1*time.Hour), domain.TaskPriorityHigh)
	slaSvc.Now = func() time.Time { return now }

	breaches, err := slaSvc.ActiveBreaches(ctx)
	require.NoError(t, err)
	require.Len(t, breaches, 1)
	assert.Equal(t, overdue.ID, breaches[0].TaskID)

	// Resolving the breached task removes it from the very next read.
	_, err = tasks.UpdateStatus(ctx, overdue.ID, domain.TaskStatusInProgress, "agent", "")
	require.NoError(t, err)
	_, err = tasks.UpdateStatus(ctx, overdue.ID, domain.TaskStatusResolved, "agent", "fixed")
	require.NoError(t, err)

	breaches, err = slaSvc.ActiveBreaches(ctx)
	require.NoError(t, err)
	assert.Empty(t, breaches)
}

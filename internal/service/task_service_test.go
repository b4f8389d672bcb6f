package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func newTestTaskService(t *testing.T) (*TaskService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewTaskService(TaskDependencies{
		TaskRepo:     store.Tasks(),
		ActivityRepo: store.ActivityLog(),
		Policy:       sla.NewPolicy(sla.DefaultHours(), false),
	})
	return svc, store
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns SLA hours from policy and starts Pending", func(t *testing.T) {
		svc, _ := newTestTaskService(t)

		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentElectricity, "streetlight_outage", domain.TaskPriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, 24.0, task.SLAHours)
		assert.Equal(t, domain.DepartmentElectricity, task.Department)
		assert.NotEmpty(t, task.ID)
	})

	t.Run("writes one INIT activity entry", func(t *testing.T) {
		svc, _ := newTestTaskService(t)

		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentRoads, "pothole", domain.TaskPriorityMedium)
		require.NoError(t, err)

		entries, err := svc.ListTaskActivity(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.StatusInit, entries[0].OldStatus)
		assert.Equal(t, domain.TaskStatusPending, entries[0].NewStatus)
	})

	t.Run("SLA hours never change after creation", func(t *testing.T) {
		svc, _ := newTestTaskService(t)

		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentWater, "water_leak", domain.TaskPriorityCritical)
		require.NoError(t, err)
		require.Equal(t, 4.0, task.SLAHours)

		updated, err := svc.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress, "Admin", "")
		require.NoError(t, err)
		assert.Equal(t, 4.0, updated.SLAHours)

		updated, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusResolved, "Admin", "fixed")
		require.NoError(t, err)
		assert.Equal(t, 4.0, updated.SLAHours)
	})
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()

	valid := []struct {
		from domain.TaskStatus
		to   domain.TaskStatus
	}{
		{domain.TaskStatusPending, domain.TaskStatusInProgress},
		{domain.TaskStatusPending, domain.TaskStatusResolved},
		{domain.TaskStatusPending, domain.TaskStatusCancelled},
		{domain.TaskStatusInProgress, domain.TaskStatusResolved},
		{domain.TaskStatusInProgress, domain.TaskStatusCancelled},
		{domain.TaskStatusInProgress, domain.TaskStatusPending},
	}

	// seedStatus walks a fresh task into the desired starting state.
	seedStatus := func(t *testing.T, svc *TaskService, status domain.TaskStatus) *domain.Task {
		t.Helper()
		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentGeneral, "General Report", domain.TaskPriorityMedium)
		require.NoError(t, err)
		if status == domain.TaskStatusPending {
			return task
		}
		task, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress, "Admin", "seed")
		require.NoError(t, err)
		if status == domain.TaskStatusInProgress {
			return task
		}
		task, err = svc.UpdateStatus(ctx, task.ID, status, "Admin", "seed")
		require.NoError(t, err)
		return task
	}

	t.Run("allowed transitions succeed", func(t *testing.T) {
		for _, tc := range valid {
			svc, _ := newTestTaskService(t)
			task := seedStatus(t, svc, tc.from)

			updated, err := svc.UpdateStatus(ctx, task.ID, tc.to, "Admin", "")
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, updated.Status)
		}
	})

	t.Run("every other combination is rejected without side effects", func(t *testing.T) {
		statuses := []domain.TaskStatus{
			domain.TaskStatusPending,
			domain.TaskStatusInProgress,
			domain.TaskStatusResolved,
			domain.TaskStatusCancelled,
		}
		allowed := map[[2]domain.TaskStatus]bool{}
		for _, tc := range valid {
			allowed[[2]domain.TaskStatus{tc.from, tc.to}] = true
		}

		for _, from := range statuses {
			for _, to := range statuses {
				if allowed[[2]domain.TaskStatus{from, to}] {
					continue
				}
				svc, _ := newTestTaskService(t)
				task := seedStatus(t, svc, from)
				before, err := svc.ListTaskActivity(ctx, task.ID)
				require.NoError(t, err)

				_, err = svc.UpdateStatus(ctx, task.ID, to, "Admin", "")
				assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err), "%s -> %s", from, to)

				current, err := svc.GetTask(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, from, current.Status, "status must be unchanged after %s -> %s", from, to)

				after, err := svc.ListTaskActivity(ctx, task.ID)
				require.NoError(t, err)
				assert.Len(t, after, len(before), "no audit entry for rejected %s -> %s", from, to)
			}
		}
	})

	t.Run("resolving a resolved task fails and writes no entry", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		task := seedStatus(t, svc, domain.TaskStatusResolved)

		entriesBefore, err := svc.ListTaskActivity(ctx, task.ID)
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusResolved, "Admin", "fixed")
		assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))

		entriesAfter, err := svc.ListTaskActivity(ctx, task.ID)
		require.NoError(t, err)
		assert.Len(t, entriesAfter, len(entriesBefore))
	})

	t.Run("unknown task id fails NOT_FOUND", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		_, err := svc.UpdateStatus(ctx, "missing", domain.TaskStatusInProgress, "Admin", "")
		assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	})

	t.Run("empty changed_by is rejected", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentGeneral, "General Report", domain.TaskPriorityMedium)
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress, "  ", "")
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	})
}

func TestActivityAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("each transition appends exactly one chained entry", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentSanitation, "garbage_overflow", domain.TaskPriorityLow)
		require.NoError(t, err)

		steps := []domain.TaskStatus{
			domain.TaskStatusInProgress,
			domain.TaskStatusPending,
			domain.TaskStatusInProgress,
			domain.TaskStatusResolved,
		}
		for _, next := range steps {
			current, err := svc.GetTask(ctx, task.ID)
			require.NoError(t, err)
			expectedOld := current.Status

			_, err = svc.UpdateStatus(ctx, task.ID, next, "Admin", "step")
			require.NoError(t, err)

			entries, err := svc.ListTaskActivity(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, expectedOld, entries[0].OldStatus)
			assert.Equal(t, next, entries[0].NewStatus)
		}

		// Newest first; the chain reads backwards.
		entries, err := svc.ListTaskActivity(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, entries, len(steps)+1)
		for i := 0; i < len(entries)-1; i++ {
			assert.Equal(t, entries[i+1].NewStatus, entries[i].OldStatus)
		}
		assert.Equal(t, domain.StatusInit, entries[len(entries)-1].OldStatus)
	})

	t.Run("history survives task deletion", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentRoads, "pothole", domain.TaskPriorityHigh)
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusCancelled, "Admin", "duplicate")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteTask(ctx, task.ID))

		_, err = svc.GetTask(ctx, task.ID)
		assert.Equal(t, "NOT_FOUND", errorCode(t, err))

		entries, err := svc.ListTaskActivity(ctx, task.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("deleting an unknown task fails NOT_FOUND", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		err := svc.DeleteTask(ctx, "missing")
		assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	})
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by department and supports All", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		_, err := svc.CreateTask(ctx, "c-1", domain.DepartmentWater, "water_leak", domain.TaskPriorityHigh)
		require.NoError(t, err)
		_, err = svc.CreateTask(ctx, "c-2", domain.DepartmentRoads, "pothole", domain.TaskPriorityMedium)
		require.NoError(t, err)

		water, err := svc.ListTasks(ctx, "Water")
		require.NoError(t, err)
		require.Len(t, water, 1)
		assert.Equal(t, domain.DepartmentWater, water[0].Department)

		all, err := svc.ListTasks(ctx, "All")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		unfiltered, err := svc.ListTasks(ctx, "")
		require.NoError(t, err)
		assert.Len(t, unfiltered, 2)
	})

	t.Run("unknown department is rejected", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		_, err := svc.ListTasks(ctx, "Parks")
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	})

	t.Run("repeated reads with no writes are identical", func(t *testing.T) {
		svc, _ := newTestTaskService(t)
		_, err := svc.CreateTask(ctx, "c-1", domain.DepartmentWater, "water_leak", domain.TaskPriorityHigh)
		require.NoError(t, err)
		_, err = svc.CreateTask(ctx, "c-2", domain.DepartmentRoads, "pothole", domain.TaskPriorityMedium)
		require.NoError(t, err)

		first, err := svc.ListTasks(ctx, "")
		require.NoError(t, err)
		second, err := svc.ListTasks(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestConcurrentStatusUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService(t)

	task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentElectricity, "power_outage", domain.TaskPriorityCritical)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress, "Admin", "")
	require.NoError(t, err)

	// InProgress -> Resolved is valid once; the racing duplicates must all
	// fail the transition check rather than double-write.
	const workers = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.UpdateStatus(ctx, task.ID, domain.TaskStatusResolved, "Admin", "race"); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent resolve may win")

	entries, err := svc.ListTaskActivity(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "INIT, InProgress, Resolved")
}

func TestClockInjection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	task, err := svc.CreateTask(ctx, "complaint-1", domain.DepartmentGeneral, "General Report", domain.TaskPriorityMedium)
	require.NoError(t, err)
	assert.True(t, task.CreatedAt.Equal(fixed))
	assert.True(t, task.UpdatedAt.Equal(fixed))
}

package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const lockStripes = 64

// TaskService owns the task lifecycle. It is the single writer path for task
// status: every accepted transition lands atomically with exactly one
// activity-log entry, and mutations on the same task are serialized through
// striped locks so a stale transition check can never win a race.
type TaskService struct {
	tasks      repository.TaskRepository
	activity   repository.ActivityLogRepository
	policy     *sla.Policy
	dispatcher events.Dispatcher
	locks      [lockStripes]sync.Mutex

	// Now is swappable for tests.
	Now func() time.Time
}

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo     repository.TaskRepository
	ActivityRepo repository.ActivityLogRepository
	Policy       *sla.Policy
	Dispatcher   events.Dispatcher
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		activity:   deps.ActivityRepo,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		Now:        time.Now,
	}
}

var allowedTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusPending:    {domain.TaskStatusInProgress, domain.TaskStatusResolved, domain.TaskStatusCancelled},
	domain.TaskStatusInProgress: {domain.TaskStatusResolved, domain.TaskStatusCancelled, domain.TaskStatusPending},
	domain.TaskStatusResolved:   {},
	domain.TaskStatusCancelled:  {},
}

func isValidTransition(current, next domain.TaskStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateTask materializes one task for a complaint. The SLA budget is copied
// from the policy here and never recomputed; the creation audit entry records
// the INIT sentinel as its old status.
func (s *TaskService) CreateTask(ctx context.Context, complaintID string, department domain.Department, issueType string, priority domain.TaskPriority) (*domain.Task, error) {
	slaHours, err := s.policy.Hours(priority)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	task := &domain.Task{
		ID:          uuid.NewString(),
		ComplaintID: complaintID,
		Department:  department,
		IssueType:   issueType,
		Priority:    priority,
		Status:      domain.TaskStatusPending,
		SLAHours:    slaHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := &domain.ActivityLogEntry{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Timestamp: now,
		ChangedBy: "System",
		OldStatus: domain.StatusInit,
		NewStatus: domain.TaskStatusPending,
		Remark:    "task created",
	}

	if err := s.tasks.Create(ctx, task, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskCreated,
		TaskID: task.ID,
		Payload: events.TaskCreatedPayload{
			ComplaintID: task.ComplaintID,
			Department:  task.Department,
			IssueType:   task.IssueType,
			Priority:    task.Priority,
			SLAHours:    task.SLAHours,
		},
	})
	return task, nil
}

// UpdateStatus applies one transition from the state machine. A rejected
// transition leaves the task untouched and writes no audit entry.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, newStatus domain.TaskStatus, changedBy, remark string) (*domain.Task, error) {
	if strings.TrimSpace(changedBy) == "" {
		return nil, apperrors.NewInvalidInput("changed_by is required", nil)
	}

	lock := s.lockFor(taskID)
	lock.Lock()
	defer lock.Unlock()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}
	if !isValidTransition(task.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition("invalid status transition", map[string]any{
			"task_id":    taskID,
			"old_status": string(task.Status),
			"new_status": string(newStatus),
		})
	}

	oldStatus := task.Status
	now := s.Now()
	task.Status = newStatus
	task.UpdatedAt = now
	entry := &domain.ActivityLogEntry{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Timestamp: now,
		ChangedBy: changedBy,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Remark:    remark,
	}

	if err := s.tasks.UpdateStatus(ctx, task, entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskStatusChanged,
		TaskID: task.ID,
		Actor:  changedBy,
		Payload: events.TaskStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Remark:    remark,
		},
	})
	return task, nil
}

// GetTask fetches a single task.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// ListTasks returns tasks newest first, optionally filtered by department.
// An absent filter or the literal "All" lists everything.
func (s *TaskService) ListTasks(ctx context.Context, departmentFilter string) ([]domain.Task, error) {
	filter := repository.TaskFilter{}
	trimmed := strings.TrimSpace(departmentFilter)
	if trimmed != "" && !strings.EqualFold(trimmed, "all") {
		department, ok := domain.ParseDepartment(trimmed)
		if !ok {
			return nil, apperrors.NewInvalidInput("unknown department", map[string]any{"department": trimmed})
		}
		filter.Department = &department
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// DeleteTask removes the task. Its activity-log entries are retained: the
// audit trail is immutable and outlives the task.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	lock := s.lockFor(taskID)
	lock.Lock()
	defer lock.Unlock()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTaskDeleted,
		TaskID:  taskID,
		Payload: events.TaskDeletedPayload{Department: task.Department},
	})
	return nil
}

// ListActivity returns the full audit trail, newest first.
func (s *TaskService) ListActivity(ctx context.Context) ([]domain.ActivityLogEntry, error) {
	entries, err := s.activity.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ListTaskActivity returns one task's audit trail, newest first. History for
// a deleted task remains readable.
func (s *TaskService) ListTaskActivity(ctx context.Context, taskID string) ([]domain.ActivityLogEntry, error) {
	entries, err := s.activity.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TaskService) lockFor(taskID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *TaskService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

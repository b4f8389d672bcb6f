package service

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// SLAService projects breach records from the task store. Breaches are
// derived at read time, never stored: a task that just went terminal
// disappears from the very next computation.
type SLAService struct {
	tasks  repository.TaskRepository
	policy *sla.Policy

	// Now is swappable for tests.
	Now func() time.Time
}

// NewSLAService constructs the monitor.
func NewSLAService(tasks repository.TaskRepository, policy *sla.Policy) *SLAService {
	return &SLAService{tasks: tasks, policy: policy, Now: time.Now}
}

// ComputeBreaches evaluates every non-terminal task against its frozen SLA
// budget. ElapsedHours is measured against the current clock on each call.
func (s *SLAService) ComputeBreaches(ctx context.Context) ([]domain.SLABreach, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.Now()
	breaches := make([]domain.SLABreach, 0, len(tasks))
	for _, task := range tasks {
		if task.Status.IsTerminal() {
			continue
		}
		elapsed := now.Sub(task.CreatedAt).Hours()
		breaches = append(breaches, domain.SLABreach{
			TaskID:       task.ID,
			Department:   task.Department,
			IssueType:    task.IssueType,
			Priority:     task.Priority,
			SLAHours:     task.SLAHours,
			ElapsedHours: elapsed,
			Breached:     s.policy.Breached(elapsed, task.SLAHours),
		})
	}
	return breaches, nil
}

// ActiveBreaches filters ComputeBreaches down to breached tasks only.
func (s *SLAService) ActiveBreaches(ctx context.Context) ([]domain.SLABreach, error) {
	records, err := s.ComputeBreaches(ctx)
	if err != nil {
		return nil, err
	}
	breached := make([]domain.SLABreach, 0, len(records))
	for _, record := range records {
		if record.Breached {
			breached = append(breached, record)
		}
	}
	return breached, nil
}

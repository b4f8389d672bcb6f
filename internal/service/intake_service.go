package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Fallback task labels used when classification yields no issues.
const (
	fallbackIssueType = "General Report"
)

// IntakeService turns a raw citizen complaint into a stored complaint plus
// one task per detected issue. The classifier is an injected capability; the
// classification call is bounded by a configured budget and is never retried
// here.
type IntakeService struct {
	complaints repository.ComplaintRepository
	tasks      *TaskService
	classifier classifier.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	budget     time.Duration

	// Now is swappable for tests.
	Now func() time.Time
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	TaskService   *TaskService
	Classifier    classifier.Classifier
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Budget        time.Duration
}

// NewIntakeService constructs the orchestrator.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		complaints: deps.ComplaintRepo,
		tasks:      deps.TaskService,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		budget:     deps.Budget,
		Now:        time.Now,
	}
}

// SubmissionResult is what a successful (or partially successful) submission
// returns to the caller.
type SubmissionResult struct {
	Complaint      *domain.Complaint
	Classification classifier.Result
	Tasks          []domain.Task
}

// Submit validates the complaint, classifies it within the time budget, then
// stores the complaint and fans out tasks. Policy choice: when the classifier
// is unreachable or times out, the whole submission fails and no complaint is
// stored; the caller may resubmit. When classification succeeds but returns
// zero issues, exactly one General fallback task is created.
//
// Task fan-out is not all-or-nothing: if a creation fails partway the
// complaint and the tasks already created survive, and the error names the
// department that failed so nothing is silently lost.
func (s *IntakeService) Submit(ctx context.Context, description, location string) (*SubmissionResult, error) {
	trimmed, err := classifier.ValidateDescription(description)
	if err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = domain.LocationUnspecified
	}

	result, err := s.classify(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	// Abort before any store write if the caller has already gone away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		ID:          uuid.NewString(),
		Description: trimmed,
		Location:    location,
		CreatedAt:   s.Now(),
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	// Zero detected issues collapse to a single General fallback task so the
	// complaint is never left untracked.
	if len(result.Issues) == 0 {
		result.Department = domain.DepartmentGeneral
		result.Priority = domain.TaskPriorityMedium
	}

	submission := &SubmissionResult{Complaint: complaint, Classification: result}
	for _, issue := range fanOutIssues(result) {
		task, err := s.tasks.CreateTask(ctx, complaint.ID, result.Department, issue, result.Priority)
		if err != nil {
			s.logger.Error("task fan-out failed",
				zap.String("complaint_id", complaint.ID),
				zap.String("department", string(result.Department)),
				zap.Error(err))
			return submission, apperrors.NewDomainError(
				"TASK_CREATION_FAILED",
				"failed to create task for department "+string(result.Department),
				apperrors.ToDomainError(err).HTTPStatus,
				map[string]any{"department": string(result.Department), "issue": issue},
			)
		}
		submission.Tasks = append(submission.Tasks, *task)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventComplaintSubmitted,
		Payload: events.ComplaintSubmittedPayload{
			ComplaintID: complaint.ID,
			Department:  result.Department,
			TaskCount:   len(submission.Tasks),
		},
	})
	return submission, nil
}

// Perceive runs classification without persisting anything.
func (s *IntakeService) Perceive(ctx context.Context, description string) (classifier.Result, error) {
	trimmed, err := classifier.ValidateDescription(description)
	if err != nil {
		return classifier.Result{}, err
	}
	return s.classify(ctx, trimmed)
}

// ListComplaints returns complaints newest first.
func (s *IntakeService) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	complaints, err := s.complaints.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// DeleteComplaint removes a complaint and its tasks. Activity-log entries for
// the removed tasks are retained.
func (s *IntakeService) DeleteComplaint(ctx context.Context, complaintID string) error {
	if err := s.complaints.Delete(ctx, complaintID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return apperrors.MapError(err)
	}
	removed, err := s.tasks.tasks.DeleteByComplaint(ctx, complaintID)
	if err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("complaint deleted",
		zap.String("complaint_id", complaintID),
		zap.Int64("tasks_removed", removed))
	return nil
}

// classify bounds the classifier call with the configured budget and maps a
// blown budget to ClassifierTimeout.
func (s *IntakeService) classify(ctx context.Context, description string) (classifier.Result, error) {
	classifyCtx := ctx
	if s.budget > 0 {
		var cancel context.CancelFunc
		classifyCtx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}
	result, err := s.classifier.Classify(classifyCtx, description)
	if err != nil {
		if ctx.Err() == nil && errors.Is(classifyCtx.Err(), context.DeadlineExceeded) {
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "CLASSIFIER_TIMEOUT" {
				return classifier.Result{}, apperrors.NewClassifierTimeout(err)
			}
		}
		return classifier.Result{}, err
	}
	return result, nil
}

// fanOutIssues returns the distinct issues to materialize, substituting the
// single General fallback when the classifier found none.
func fanOutIssues(result classifier.Result) []string {
	if len(result.Issues) == 0 {
		return []string{fallbackIssueType}
	}
	issues := make([]string, 0, len(result.Issues))
	seen := make(map[string]struct{}, len(result.Issues))
	for _, issue := range result.Issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		issues = append(issues, issue)
	}
	return issues
}

func (s *IntakeService) publishEvent(ctx context.Context, event events.Event) {
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

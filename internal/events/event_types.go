package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted EventType = "complaint_submitted"
	EventTaskCreated        EventType = "task_created"
	EventTaskStatusChanged  EventType = "task_status_changed"
	EventTaskDeleted        EventType = "task_deleted"
	EventSLABreachDetected  EventType = "sla_breach_detected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	ComplaintID string            `json:"complaint_id"`
	Department  domain.Department `json:"department"`
	TaskCount   int               `json:"task_count"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	ComplaintID string              `json:"complaint_id"`
	Department  domain.Department   `json:"department"`
	IssueType   string              `json:"issue_type"`
	Priority    domain.TaskPriority `json:"priority"`
	SLAHours    float64             `json:"sla_hours"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
	Remark    string            `json:"remark,omitempty"`
}

// TaskDeletedPayload payload.
type TaskDeletedPayload struct {
	Department domain.Department `json:"department"`
}

// SLABreachDetectedPayload payload.
type SLABreachDetectedPayload struct {
	Department   domain.Department   `json:"department"`
	IssueType    string              `json:"issue_type"`
	Priority     domain.TaskPriority `json:"priority"`
	SLAHours     float64             `json:"sla_hours"`
	ElapsedHours float64             `json:"elapsed_hours"`
}
